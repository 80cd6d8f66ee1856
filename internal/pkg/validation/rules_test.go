package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Anandhu5Uthaman/College-mini/internal/app/models"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func testRules() *Rules {
	return NewRules("@gecidukki.ac.in").WithClock(func() time.Time {
		return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	})
}

func validStudent() SignupInput {
	return SignupInput{
		Fullname:   "Jane Doe",
		Email:      "jane@gecidukki.ac.in",
		Password:   "Abcde1",
		Role:       "Student",
		Department: "Computer Science and Engineering",
		KTUID:      strPtr("IDK1234"),
		Phone:      "+919876543210",
	}
}

func TestSignup_Accepts(t *testing.T) {
	r := testRules()

	assert.Empty(t, r.Signup(validStudent()))

	alumni := validStudent()
	alumni.Role = "Alumni"
	alumni.KTUID = strPtr("LIDK20AB9")
	alumni.PassoutYear = intPtr(2025)
	assert.Empty(t, r.Signup(alumni))

	faculty := validStudent()
	faculty.Role = "Faculty"
	faculty.KTUID = nil
	assert.Empty(t, r.Signup(faculty))
}

func TestSignup_CollectsViolationsInOrder(t *testing.T) {
	got := testRules().Signup(SignupInput{
		Fullname: "Jo",
		Email:    "jo@gmail.com",
		Password: "abc",
		Role:     "Teacher",
		Phone:    "9876543210",
		Username: "jo",
	})

	assert.Equal(t, []string{
		MsgFullname,
		"Must use a valid @gecidukki.ac.in email address",
		MsgPasswordLength,
		MsgRole,
		MsgDepartment,
		MsgPhone,
		MsgUsername,
	}, got)
}

func TestSignup_RoleConditionalFields(t *testing.T) {
	r := testRules()

	cases := []struct {
		name   string
		mutate func(*SignupInput)
		want   []string
	}{
		{"student without ktu id", func(in *SignupInput) { in.KTUID = nil }, []string{MsgKTUIDRequired}},
		{"student with bad ktu id", func(in *SignupInput) { in.KTUID = strPtr("KTU123") }, []string{MsgKTUIDFormat}},
		{"lowercase ktu id", func(in *SignupInput) { in.KTUID = strPtr("IDKabc") }, []string{MsgKTUIDFormat}},
		{"alumni without passout year", func(in *SignupInput) { in.Role = "Alumni" }, []string{MsgPassoutRequired}},
		{"alumni before 2010", func(in *SignupInput) {
			in.Role = "Alumni"
			in.PassoutYear = intPtr(2009)
		}, []string{MsgPassoutRange}},
		{"alumni in the future", func(in *SignupInput) {
			in.Role = "Alumni"
			in.PassoutYear = intPtr(2026)
		}, []string{MsgPassoutRange}},
		{"alumni without anything", func(in *SignupInput) {
			in.Role = "Alumni"
			in.KTUID = nil
		}, []string{MsgKTUIDRequired, MsgPassoutRequired}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validStudent()
			tc.mutate(&in)
			assert.Equal(t, tc.want, r.Signup(in))
		})
	}
}

func TestPasswordViolations(t *testing.T) {
	assert.Empty(t, PasswordViolations("Abcde1"))
	assert.Equal(t, []string{MsgPasswordLength}, PasswordViolations("Ab1"))
	assert.Equal(t, []string{MsgPasswordStrength}, PasswordViolations("abcdef1"))
	assert.Equal(t, []string{MsgPasswordStrength}, PasswordViolations("ABCDEF1"))
	assert.Equal(t, []string{MsgPasswordStrength}, PasswordViolations("Abcdefg"))

	// Length counts characters, not bytes.
	assert.Equal(t, []string{MsgPasswordLength}, PasswordViolations("Ééé1"))
	assert.Empty(t, PasswordViolations("Ééabc1"))
}

func TestProfile_ChecksAgainstCurrentRole(t *testing.T) {
	r := testRules()

	assert.Empty(t, r.Profile(ProfileInput{Phone: strPtr("+911234567890"), KTUID: strPtr("IDK99")}, models.StudentDetails{KTUID: "IDK1"}))
	assert.Equal(t, []string{MsgPassoutNotAllowed}, r.Profile(ProfileInput{PassoutYear: intPtr(2015)}, models.StudentDetails{KTUID: "IDK1"}))
	assert.Equal(t, []string{MsgPassoutRange}, r.Profile(ProfileInput{PassoutYear: intPtr(2001)}, models.AlumniDetails{KTUID: "IDK1", PassoutYear: 2015}))
	assert.Equal(t, []string{MsgKTUIDNotAllowed, MsgPhone}, r.Profile(ProfileInput{KTUID: strPtr("IDK1"), Phone: strPtr("12345")}, models.FacultyDetails{}))
}

func TestBuildRoleDetails(t *testing.T) {
	d, err := BuildRoleDetails(validStudent())
	assert.NoError(t, err)
	assert.Equal(t, models.StudentDetails{KTUID: "IDK1234"}, d)

	in := validStudent()
	in.Role = "Faculty"
	d, err = BuildRoleDetails(in)
	assert.NoError(t, err)
	assert.Equal(t, models.FacultyDetails{}, d)
}
