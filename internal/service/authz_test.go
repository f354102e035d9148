// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"errors"
	"testing"

	"github.com/olegiv/sangbad-cms/internal/model"
)

func TestAuthorizeMutation(t *testing.T) {
	entity := model.Content{ID: 5, AuthorID: 2}

	tests := []struct {
		name string
		p    *model.Principal
		want any
	}{
		{"anonymous", nil, &model.AuthenticationError{}},
		{"user role", &model.Principal{ID: 2, Role: model.RoleUser}, &model.ForbiddenRoleError{}},
		{"admin on foreign row", &model.Principal{ID: 1, Role: model.RoleAdmin}, nil},
		{"editor on own row", &model.Principal{ID: 2, Role: model.RoleEditor}, nil},
		{"writer on own row", &model.Principal{ID: 2, Role: model.RoleWriter}, nil},
		{"editor on foreign row", &model.Principal{ID: 3, Role: model.RoleEditor}, &model.OwnershipError{}},
		{"writer on foreign row", &model.Principal{ID: 3, Role: model.RoleWriter}, &model.OwnershipError{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkErrType(t, authorizeMutation(tt.p, entity), tt.want)
		})
	}
}

func TestAuthorizePublish(t *testing.T) {
	entity := model.Content{ID: 5, AuthorID: 2}

	tests := []struct {
		name string
		p    *model.Principal
		want any
	}{
		{"anonymous", nil, &model.AuthenticationError{}},
		{"user role", &model.Principal{ID: 2, Role: model.RoleUser}, &model.ForbiddenRoleError{}},
		{"admin", &model.Principal{ID: 1, Role: model.RoleAdmin}, nil},
		{"editor on foreign row", &model.Principal{ID: 3, Role: model.RoleEditor}, nil},
		{"writer on own row", &model.Principal{ID: 2, Role: model.RoleWriter}, nil},
		{"writer on foreign row", &model.Principal{ID: 3, Role: model.RoleWriter}, &model.OwnershipError{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkErrType(t, authorizePublish(tt.p, entity), tt.want)
		})
	}
}

func checkErrType(t *testing.T, err error, want any) {
	t.Helper()
	switch want.(type) {
	case nil:
		if err != nil {
			t.Errorf("err = %v, want nil", err)
		}
	case *model.AuthenticationError:
		var e *model.AuthenticationError
		if !errors.As(err, &e) {
			t.Errorf("err = %v, want AuthenticationError", err)
		}
	case *model.ForbiddenRoleError:
		var e *model.ForbiddenRoleError
		if !errors.As(err, &e) {
			t.Errorf("err = %v, want ForbiddenRoleError", err)
		}
	case *model.OwnershipError:
		var e *model.OwnershipError
		if !errors.As(err, &e) {
			t.Errorf("err = %v, want OwnershipError", err)
		}
	}
}

func TestListParamsNormalize(t *testing.T) {
	tests := []struct {
		in   ListParams
		want ListParams
	}{
		{ListParams{}, ListParams{Page: 1, PerPage: DefaultPerPage}},
		{ListParams{Page: -3, PerPage: 500}, ListParams{Page: 1, PerPage: MaxPerPage}},
		{ListParams{Page: 4, PerPage: 10}, ListParams{Page: 4, PerPage: 10}},
	}
	for _, tt := range tests {
		if got := tt.in.normalize(); got != tt.want {
			t.Errorf("normalize(%+v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}

	limit, offset := ListParams{Page: 3, PerPage: 10}.limitOffset()
	if limit != 10 || offset != 20 {
		t.Errorf("limitOffset = %d, %d", limit, offset)
	}
}

func TestNewPage(t *testing.T) {
	p := newPage[int](nil, 0, ListParams{Page: 1, PerPage: 20})
	if p.Items == nil || p.TotalPages != 1 {
		t.Errorf("empty page = %+v", p)
	}

	p = newPage([]int{1, 2}, 41, ListParams{Page: 1, PerPage: 20})
	if p.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", p.TotalPages)
	}
}
