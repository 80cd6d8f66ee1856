package models

import (
	"fmt"
	"time"
)

// Role is the account type chosen at registration.
type Role string

const (
	RoleStudent Role = "Student"
	RoleAlumni  Role = "Alumni"
	RoleFaculty Role = "Faculty"
)

// Roles lists every valid role in display order.
var Roles = []Role{RoleStudent, RoleAlumni, RoleFaculty}

// ParseRole returns the role named by s.
func ParseRole(s string) (Role, bool) {
	for _, r := range Roles {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// RoleDetails carries the fields a role makes mandatory. The set of
// implementations is closed: StudentDetails, AlumniDetails, FacultyDetails.
type RoleDetails interface {
	Role() Role
	sealed()
}

// StudentDetails is the Student variant.
type StudentDetails struct {
	KTUID string
}

// AlumniDetails is the Alumni variant.
type AlumniDetails struct {
	KTUID       string
	PassoutYear int
}

// FacultyDetails is the Faculty variant. Faculty carry no institutional id.
type FacultyDetails struct{}

func (StudentDetails) Role() Role { return RoleStudent }
func (AlumniDetails) Role() Role  { return RoleAlumni }
func (FacultyDetails) Role() Role { return RoleFaculty }

func (StudentDetails) sealed() {}
func (AlumniDetails) sealed()  {}
func (FacultyDetails) sealed() {}

// NewRoleDetails builds the variant for role from the flat persisted columns.
func NewRoleDetails(role Role, ktuID *string, passoutYear *int) (RoleDetails, error) {
	switch role {
	case RoleStudent:
		if ktuID == nil {
			return nil, fmt.Errorf("student record without ktu_id")
		}
		return StudentDetails{KTUID: *ktuID}, nil
	case RoleAlumni:
		if ktuID == nil || passoutYear == nil {
			return nil, fmt.Errorf("alumni record without ktu_id or passout_year")
		}
		return AlumniDetails{KTUID: *ktuID, PassoutYear: *passoutYear}, nil
	case RoleFaculty:
		return FacultyDetails{}, nil
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}
}

// KTUIDOf returns the institutional id carried by d, if its role has one.
func KTUIDOf(d RoleDetails) (string, bool) {
	switch v := d.(type) {
	case StudentDetails:
		return v.KTUID, true
	case AlumniDetails:
		return v.KTUID, true
	case FacultyDetails:
		return "", false
	default:
		panic(fmt.Sprintf("models: unhandled role details %T", d))
	}
}

// PassoutYearOf returns the passout year carried by d, if its role has one.
func PassoutYearOf(d RoleDetails) (int, bool) {
	switch v := d.(type) {
	case AlumniDetails:
		return v.PassoutYear, true
	case StudentDetails, FacultyDetails:
		return 0, false
	default:
		panic(fmt.Sprintf("models: unhandled role details %T", d))
	}
}

// Department is one of the college's fixed departments.
type Department string

const (
	DepartmentCSE        Department = "Computer Science and Engineering"
	DepartmentECE        Department = "Electronics and Communication"
	DepartmentEEE        Department = "Electrical and Electronics"
	DepartmentCivil      Department = "Civil Engineering"
	DepartmentMechanical Department = "Mechanical Engineering"
)

// Departments lists the closed department set.
var Departments = []Department{
	DepartmentCSE,
	DepartmentECE,
	DepartmentEEE,
	DepartmentCivil,
	DepartmentMechanical,
}

// ParseDepartment returns the department named by s.
func ParseDepartment(s string) (Department, bool) {
	for _, d := range Departments {
		if string(d) == s {
			return d, true
		}
	}
	return "", false
}

// SocialPlatforms are the keys accepted in SocialLinks.
var SocialPlatforms = []string{"youtube", "instagram", "facebook", "twitter", "github", "website"}

// SocialLinks maps a platform name to a profile URL.
type SocialLinks map[string]string

// Merge applies patch over l. An empty value removes the platform.
func (l SocialLinks) Merge(patch map[string]string) SocialLinks {
	out := make(SocialLinks, len(l)+len(patch))
	for k, v := range l {
		out[k] = v
	}
	for k, v := range patch {
		if v == "" {
			delete(out, k)
			continue
		}
		out[k] = v
	}
	return out
}

// User defines the account record.
type User struct {
	ID           string
	Fullname     string
	Email        string
	PasswordHash string
	Username     string
	Department   Department
	Details      RoleDetails
	Phone        string
	Bio          string
	ProfileImg   string
	SocialLinks  SocialLinks
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Role returns the account's role.
func (u *User) Role() Role {
	return u.Details.Role()
}

// ProfilePatch lists the fields a profile edit may change. Nil means unchanged.
type ProfilePatch struct {
	Fullname    *string
	Department  *Department
	Phone       *string
	Bio         *string
	Details     RoleDetails
	SocialLinks SocialLinks
}

// Apply returns a copy of u with the patch applied.
func (p ProfilePatch) Apply(u User) User {
	if p.Fullname != nil {
		u.Fullname = *p.Fullname
	}
	if p.Department != nil {
		u.Department = *p.Department
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.Details != nil {
		u.Details = p.Details
	}
	if p.SocialLinks != nil {
		u.SocialLinks = p.SocialLinks
	}
	return u
}

// UniqueField names a user attribute guarded by a uniqueness constraint.
type UniqueField string

const (
	UniqueEmail    UniqueField = "email"
	UniqueUsername UniqueField = "username"
	UniquePhone    UniqueField = "phone"
	UniqueKTUID    UniqueField = "ktu_id"
)
