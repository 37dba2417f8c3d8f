// Package members persists the club roster in the Members tab.
package members

import (
	"context"

	"github.com/angelmondragon/roster-sheets/internal/sheetstore"
	"github.com/angelmondragon/roster-sheets/pkg/enums"
	"github.com/angelmondragon/roster-sheets/pkg/sheets"
)

// Store reads and writes members. Deleting a member marks it inactive.
type Store struct {
	table *sheetstore.Table[Member]
}

func NewStore(values sheets.Values, spreadsheetID, tab string, opts ...sheetstore.Option) *Store {
	return &Store{
		table: sheetstore.New(values, spreadsheetID, tab, codec(), sheetstore.SoftDelete, opts...),
	}
}

// Create validates m, assigns an id when missing and appends it. An existing
// id yields CONFLICT.
func (s *Store) Create(ctx context.Context, m Member) (Member, error) {
	now := s.table.Now()
	if m.ID == "" {
		m.ID = GenerateID(now)
	}
	m, err := NewMember(m, now)
	if err != nil {
		return Member{}, err
	}
	return s.table.Insert(ctx, m)
}

func (s *Store) List(ctx context.Context) ([]Member, error) {
	return s.table.ReadAll(ctx)
}

func (s *Store) Get(ctx context.Context, id string) (Member, error) {
	return s.table.FindByID(ctx, id)
}

// Update validates m and rewrites its row with a fresh updated-at.
func (s *Store) Update(ctx context.Context, m Member) (Member, error) {
	m = m.withDefaults()
	if err := m.Validate(); err != nil {
		return Member{}, err
	}
	return s.table.Update(ctx, m)
}

// Delete marks the member inactive. The row stays in the sheet.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.table.Delete(ctx, id)
}

func (s *Store) Active(ctx context.Context) ([]Member, error) {
	return s.ByStatus(ctx, enums.MembershipStatusActive)
}

func (s *Store) ByStatus(ctx context.Context, status enums.MembershipStatus) ([]Member, error) {
	return s.table.Find(ctx, func(m Member) bool { return m.MembershipStatus == status })
}

func (s *Store) ByRole(ctx context.Context, role enums.MemberRole) ([]Member, error) {
	return s.table.Find(ctx, func(m Member) bool { return m.Role == role })
}

func (s *Store) ByPaymentStatus(ctx context.Context, status enums.PaymentStatus) ([]Member, error) {
	return s.table.Find(ctx, func(m Member) bool { return m.PaymentStatus == status })
}

// InitializeSchema writes the header row when the tab lacks it.
func (s *Store) InitializeSchema(ctx context.Context) (bool, error) {
	return s.table.EnsureHeaders(ctx)
}
