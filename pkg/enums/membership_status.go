package enums

// MembershipStatus captures whether a member is currently part of the club.
type MembershipStatus string

const (
	MembershipStatusActive    MembershipStatus = "active"
	MembershipStatusInactive  MembershipStatus = "inactive"
	MembershipStatusSuspended MembershipStatus = "suspended"
)

var validMembershipStatuses = []MembershipStatus{
	MembershipStatusActive,
	MembershipStatusInactive,
	MembershipStatusSuspended,
}

func (v MembershipStatus) String() string {
	return string(v)
}

func (v MembershipStatus) IsValid() bool {
	return isKnown(v, validMembershipStatuses)
}

func ParseMembershipStatus(value string) (MembershipStatus, error) {
	return parse(value, "membership status", validMembershipStatuses)
}
