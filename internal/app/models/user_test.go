package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoleDetails(t *testing.T) {
	ktu := "IDK1234"
	year := 2020

	d, err := NewRoleDetails(RoleStudent, &ktu, nil)
	require.NoError(t, err)
	assert.Equal(t, StudentDetails{KTUID: "IDK1234"}, d)

	d, err = NewRoleDetails(RoleAlumni, &ktu, &year)
	require.NoError(t, err)
	assert.Equal(t, AlumniDetails{KTUID: "IDK1234", PassoutYear: 2020}, d)

	_, err = NewRoleDetails(RoleAlumni, &ktu, nil)
	assert.Error(t, err)

	d, err = NewRoleDetails(RoleFaculty, &ktu, &year)
	require.NoError(t, err)
	assert.Equal(t, FacultyDetails{}, d)

	_, err = NewRoleDetails("Teacher", nil, nil)
	assert.Error(t, err)
}

func TestRoleDetailAccessors(t *testing.T) {
	id, ok := KTUIDOf(AlumniDetails{KTUID: "LIDK9", PassoutYear: 2019})
	assert.True(t, ok)
	assert.Equal(t, "LIDK9", id)

	_, ok = KTUIDOf(FacultyDetails{})
	assert.False(t, ok)

	_, ok = PassoutYearOf(StudentDetails{KTUID: "IDK1"})
	assert.False(t, ok)
}

func TestSocialLinksMerge(t *testing.T) {
	links := SocialLinks{"github": "https://github.com/jane", "website": "https://jane.dev"}
	merged := links.Merge(map[string]string{"website": "", "youtube": "https://youtube.com/@jane"})

	assert.Equal(t, SocialLinks{"github": "https://github.com/jane", "youtube": "https://youtube.com/@jane"}, merged)
	assert.Len(t, links, 2, "receiver is not modified")
}

func TestProfilePatchApply(t *testing.T) {
	phone := "+911111111111"
	u := User{Fullname: "Jane Doe", Phone: "+919876543210", Details: StudentDetails{KTUID: "IDK1"}}

	out := ProfilePatch{Phone: &phone}.Apply(u)
	assert.Equal(t, phone, out.Phone)
	assert.Equal(t, "Jane Doe", out.Fullname)
	assert.Equal(t, "+919876543210", u.Phone)
}

func TestDefaultAvatarURL(t *testing.T) {
	url := DefaultAvatarURL()
	assert.True(t, strings.HasPrefix(url, "https://api.dicebear.com/6.x/"))
	assert.Contains(t, url, "/svg?seed=")
}
