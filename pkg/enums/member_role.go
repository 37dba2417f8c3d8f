package enums

// MemberRole represents a member's permission level in the club.
type MemberRole string

const (
	MemberRoleMember MemberRole = "member"
	MemberRoleExec   MemberRole = "exec"
)

var validMemberRoles = []MemberRole{
	MemberRoleMember,
	MemberRoleExec,
}

func (v MemberRole) String() string {
	return string(v)
}

func (v MemberRole) IsValid() bool {
	return isKnown(v, validMemberRoles)
}

func ParseMemberRole(value string) (MemberRole, error) {
	return parse(value, "member role", validMemberRoles)
}
