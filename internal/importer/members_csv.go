package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/angelmondragon/roster-sheets/internal/members"
	"github.com/angelmondragon/roster-sheets/pkg/enums"
	"github.com/angelmondragon/roster-sheets/pkg/validate"
)

// memberColumns maps normalized header names onto member fields. Both the
// sheet headers ("First Name") and snake_case names ("first_name") normalize
// to the same key.
var memberColumns = map[string]func(*members.Member, string){
	"member_id":         func(m *members.Member, v string) { m.ID = v },
	"first_name":        func(m *members.Member, v string) { m.FirstName = v },
	"last_name":         func(m *members.Member, v string) { m.LastName = v },
	"email":             func(m *members.Member, v string) { m.Email = v },
	"phone":             func(m *members.Member, v string) { m.Phone = v },
	"wix_user_id":       func(m *members.Member, v string) { m.WixUserID = v },
	"role":              func(m *members.Member, v string) { m.Role = enums.MemberRole(strings.ToLower(v)) },
	"membership_status": func(m *members.Member, v string) { m.MembershipStatus = enums.MembershipStatus(strings.ToLower(v)) },
	"payment_status":    func(m *members.Member, v string) { m.PaymentStatus = enums.PaymentStatus(strings.ToLower(v)) },
	"join_date":         func(m *members.Member, v string) { m.JoinDate = v },
	"graduation_year":   func(m *members.Member, v string) { m.GraduationYear = v },
	"major":             func(m *members.Member, v string) { m.Major = v },
	"emergency_contact": func(m *members.Member, v string) { m.EmergencyContact = v },
	"emergency_phone":   func(m *members.Member, v string) { m.EmergencyPhone = v },
	"notes":             func(m *members.Member, v string) { m.Notes = v },
}

var requiredMemberColumns = []string{"first_name", "last_name", "email", "phone"}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.Join(strings.Fields(h), "_")
}

// ParseMembersCSV reads a header-keyed CSV into member inputs. Unknown
// columns are ignored; a missing join date becomes now's date. The members
// are not validated here.
func ParseMembersCSV(r io.Reader, now time.Time) ([]members.Member, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("members csv is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("reading members csv header: %w", err)
	}

	setters := make([]func(*members.Member, string), len(header))
	present := map[string]bool{}
	for i, h := range header {
		key := normalizeHeader(h)
		if set, ok := memberColumns[key]; ok {
			setters[i] = set
			present[key] = true
		}
	}
	var missing []string
	for _, col := range requiredMemberColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("members csv missing columns: %s", strings.Join(missing, ", "))
	}

	today := now.Format(validate.DateLayout)
	var out []members.Member
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading members csv line %d: %w", line, err)
		}
		if blankRecord(record) {
			continue
		}
		var m members.Member
		for i, value := range record {
			if i < len(setters) && setters[i] != nil {
				setters[i](&m, strings.TrimSpace(value))
			}
		}
		if m.JoinDate == "" {
			m.JoinDate = today
		}
		out = append(out, m)
	}
	return out, nil
}

func blankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
