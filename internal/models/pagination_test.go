package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageWindow(t *testing.T) {
	cases := []struct {
		page, size         int
		wantPage, wantSize int
	}{
		{0, 0, 1, 20},
		{-3, 10, 1, 10},
		{4, 500, 4, 100},
		{2, 100, 2, 100},
	}
	for _, tc := range cases {
		page, size := PageWindow(tc.page, tc.size)
		assert.Equal(t, tc.wantPage, page)
		assert.Equal(t, tc.wantSize, size)
	}
	assert.Equal(t, &Pagination{Page: 1, PageSize: 20, TotalCount: 7}, NewPagination(0, 0, 7))
}

func TestUserRoleVisibility(t *testing.T) {
	assert.True(t, RoleParent.PublishedOnly())
	assert.True(t, RoleStudent.PublishedOnly())
	assert.False(t, RoleTeacher.PublishedOnly())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, UserRole("JANITOR").Valid())
}
