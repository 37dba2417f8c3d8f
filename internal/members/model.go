package members

import (
	"time"

	"github.com/angelmondragon/roster-sheets/internal/sheetstore"
	"github.com/angelmondragon/roster-sheets/pkg/enums"
	"github.com/angelmondragon/roster-sheets/pkg/validate"
)

const entityName = "member"

var headers = []string{
	"Member ID", "First Name", "Last Name", "Email", "Phone",
	"Wix User ID", "Role", "Membership Status", "Payment Status",
	"Join Date", "Graduation Year", "Major", "Emergency Contact",
	"Emergency Phone", "Notes", "Created At", "Updated At",
}

// Member is one row of the Members tab.
type Member struct {
	ID               string                 `json:"member_id" validate:"required"`
	FirstName        string                 `json:"first_name" validate:"required"`
	LastName         string                 `json:"last_name" validate:"required"`
	Email            string                 `json:"email" validate:"roster_email"`
	Phone            string                 `json:"phone" validate:"roster_phone"`
	WixUserID        string                 `json:"wix_user_id,omitempty"`
	Role             enums.MemberRole       `json:"role" validate:"roster_enum"`
	MembershipStatus enums.MembershipStatus `json:"membership_status" validate:"roster_enum"`
	PaymentStatus    enums.PaymentStatus    `json:"payment_status" validate:"roster_enum"`
	JoinDate         string                 `json:"join_date,omitempty"`
	GraduationYear   string                 `json:"graduation_year,omitempty"`
	Major            string                 `json:"major,omitempty"`
	EmergencyContact string                 `json:"emergency_contact,omitempty"`
	EmergencyPhone   string                 `json:"emergency_phone,omitempty"`
	Notes            string                 `json:"notes,omitempty"`
	CreatedAt        string                 `json:"created_at"`
	UpdatedAt        string                 `json:"updated_at"`
}

// NewMember applies defaults, validates and stamps timestamps. CreatedAt is
// kept when already set.
func NewMember(m Member, now time.Time) (Member, error) {
	m = m.withDefaults()
	if err := m.Validate(); err != nil {
		return Member{}, err
	}
	stamp := sheetstore.FormatTimestamp(now)
	if m.CreatedAt == "" {
		m.CreatedAt = stamp
	}
	m.UpdatedAt = stamp
	return m, nil
}

func (m Member) withDefaults() Member {
	if m.Role == "" {
		m.Role = enums.MemberRoleMember
	}
	if m.MembershipStatus == "" {
		m.MembershipStatus = enums.MembershipStatusActive
	}
	if m.PaymentStatus == "" {
		m.PaymentStatus = enums.PaymentStatusPending
	}
	return m
}

func (m Member) Validate() error {
	return validate.Struct(entityName, m)
}

func (m Member) FullName() string {
	return m.FirstName + " " + m.LastName
}

// IsActive reports whether the member counts toward the active roster.
func (m Member) IsActive() bool {
	return m.MembershipStatus == enums.MembershipStatusActive
}

// ToRow renders the 17 columns in header order.
func (m Member) ToRow() []string {
	return []string{
		m.ID,
		m.FirstName,
		m.LastName,
		m.Email,
		m.Phone,
		m.WixUserID,
		m.Role.String(),
		m.MembershipStatus.String(),
		m.PaymentStatus.String(),
		m.JoinDate,
		m.GraduationYear,
		m.Major,
		m.EmergencyContact,
		m.EmergencyPhone,
		m.Notes,
		m.CreatedAt,
		m.UpdatedAt,
	}
}

// FromRow parses a sheet row. Short rows are padded and empty enum cells take
// their defaults; timestamps are kept as written.
func FromRow(row []string) (Member, error) {
	cells := make([]string, len(headers))
	copy(cells, row)

	m := Member{
		ID:               cells[0],
		FirstName:        cells[1],
		LastName:         cells[2],
		Email:            cells[3],
		Phone:            cells[4],
		WixUserID:        cells[5],
		Role:             enums.MemberRole(cells[6]),
		MembershipStatus: enums.MembershipStatus(cells[7]),
		PaymentStatus:    enums.PaymentStatus(cells[8]),
		JoinDate:         cells[9],
		GraduationYear:   cells[10],
		Major:            cells[11],
		EmergencyContact: cells[12],
		EmergencyPhone:   cells[13],
		Notes:            cells[14],
		CreatedAt:        cells[15],
		UpdatedAt:        cells[16],
	}
	m = m.withDefaults()
	if err := m.Validate(); err != nil {
		return Member{}, err
	}
	return m, nil
}

// Headers returns a copy of the canonical column names.
func Headers() []string {
	return append([]string(nil), headers...)
}

// GenerateID returns MBR_ followed by the second-resolution timestamp.
func GenerateID(now time.Time) string {
	return "MBR_" + sheetstore.IDStamp(now)
}

func codec() sheetstore.Codec[Member] {
	return sheetstore.Codec[Member]{
		Entity:  entityName,
		Headers: headers,
		ToRow:   Member.ToRow,
		FromRow: FromRow,
		ID:      func(m Member) string { return m.ID },
		Touch: func(m Member, now time.Time) Member {
			m.UpdatedAt = sheetstore.FormatTimestamp(now)
			return m
		},
		MarkDeleted: func(m Member) Member {
			m.MembershipStatus = enums.MembershipStatusInactive
			return m
		},
	}
}
