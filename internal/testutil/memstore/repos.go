package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/redevance-api/internal/domain"
	"github.com/jhoicas/redevance-api/internal/domain/entity"
)

// Users implementa repository.UserRepository.
type Users struct{ s *Store }

func (r Users) Create(ctx context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("users.create"); err != nil {
		return err
	}
	for _, other := range r.s.data.users {
		if strings.EqualFold(other.Email, u.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.s.data.users[u.ID] = *u
	return nil
}

func (r Users) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r Users) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.data.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

func (r Users) Activate(ctx context.Context, id, role string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("users.activate"); err != nil {
		return err
	}
	u, ok := r.s.data.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Role = role
	u.Status = entity.UserStatusActive
	r.s.data.users[id] = u
	return nil
}

// Assujettis implementa repository.AssujettiRepository.
type Assujettis struct{ s *Store }

func (r Assujettis) Create(ctx context.Context, a *entity.Assujetti) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("assujettis.create"); err != nil {
		return err
	}
	if err := r.uniqueContact(a); err != nil {
		return err
	}
	r.s.data.assujettis[a.ID] = cloneAssujetti(*a)
	return nil
}

func (r Assujettis) GetByID(ctx context.Context, id string) (*entity.Assujetti, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.data.assujettis[id]
	if !ok {
		return nil, nil
	}
	a = cloneAssujetti(a)
	return &a, nil
}

func (r Assujettis) GetByUserID(ctx context.Context, userID string) (*entity.Assujetti, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.data.assujettis {
		if a.UserID == userID {
			a = cloneAssujetti(a)
			return &a, nil
		}
	}
	return nil, nil
}

// LockByID el bloqueo de fila lo da la serialización de RunInTx.
func (r Assujettis) LockByID(ctx context.Context, id string) (*entity.Assujetti, error) {
	return r.GetByID(ctx, id)
}

func (r Assujettis) ContactTaken(ctx context.Context, email, phone, excludeID string) (bool, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var emailTaken, phoneTaken bool
	for id, a := range r.s.data.assujettis {
		if id == excludeID {
			continue
		}
		if email != "" && strings.EqualFold(a.Email, email) {
			emailTaken = true
		}
		if phone != "" && a.Phone == phone {
			phoneTaken = true
		}
	}
	return emailTaken, phoneTaken, nil
}

func (r Assujettis) CompleteIdentification(ctx context.Context, a *entity.Assujetti) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("assujettis.complete"); err != nil {
		return err
	}
	if _, ok := r.s.data.assujettis[a.ID]; !ok {
		return domain.ErrTaxpayerNotFound
	}
	if a.FiscalID != nil {
		for id, other := range r.s.data.assujettis {
			if id != a.ID && other.FiscalID != nil && *other.FiscalID == *a.FiscalID {
				return domain.ErrDuplicateFiscalID
			}
		}
	}
	if err := r.uniqueContact(a); err != nil {
		return err
	}
	r.s.data.assujettis[a.ID] = cloneAssujetti(*a)
	return nil
}

// uniqueContact se invoca con s.mu tomado.
func (r Assujettis) uniqueContact(a *entity.Assujetti) error {
	for id, other := range r.s.data.assujettis {
		if id == a.ID {
			continue
		}
		if a.Email != "" && strings.EqualFold(other.Email, a.Email) {
			return domain.ErrDuplicateEmail
		}
		if a.Phone != "" && other.Phone == a.Phone {
			return domain.ErrDuplicatePhone
		}
	}
	return nil
}

// Declarations implementa repository.DeclarationRepository.
type Declarations struct{ s *Store }

func (r Declarations) Create(ctx context.Context, d *entity.Declaration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("declarations.create"); err != nil {
		return err
	}
	r.s.data.declarations[d.ID] = *d
	return nil
}

func (r Declarations) CreateLine(ctx context.Context, l *entity.DeclarationLine) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("declarations.create_line"); err != nil {
		return err
	}
	r.s.data.lines[l.DeclarationID] = append(r.s.data.lines[l.DeclarationID], *l)
	return nil
}

func (r Declarations) GetByID(ctx context.Context, id string) (*entity.Declaration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.data.declarations[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r Declarations) GetLatestByAssujetti(ctx context.Context, assujettiID string) (*entity.Declaration, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var latest *entity.Declaration
	for _, d := range r.s.data.declarations {
		if d.AssujettiID != assujettiID {
			continue
		}
		if latest == nil || d.CreatedAt.After(latest.CreatedAt) {
			d := d
			latest = &d
		}
	}
	return latest, nil
}

func (r Declarations) GetLines(ctx context.Context, declarationID string) ([]*entity.DeclarationLine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	src := r.s.data.lines[declarationID]
	out := make([]*entity.DeclarationLine, 0, len(src))
	for i := range src {
		l := src[i]
		out = append(out, &l)
	}
	return out, nil
}

// Notes implementa repository.TaxationNoteRepository.
type Notes struct{ s *Store }

func (r Notes) Create(ctx context.Context, n *entity.TaxationNote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("notes.create"); err != nil {
		return err
	}
	for _, other := range r.s.data.notes {
		if other.Number == n.Number {
			return domain.ErrDuplicateNoteNumber
		}
	}
	r.s.data.notes[n.ID] = *n
	return nil
}

func (r Notes) GetByID(ctx context.Context, id string) (*entity.TaxationNote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.data.notes[id]
	if !ok {
		return nil, nil
	}
	return &n, nil
}

func (r Notes) GetByNumber(ctx context.Context, number string) (*entity.TaxationNote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, n := range r.s.data.notes {
		if n.Number == number {
			return &n, nil
		}
	}
	return nil, nil
}

func (r Notes) GetPayableForYear(ctx context.Context, assujettiID string, fiscalYear int) (*entity.TaxationNote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var latest *entity.TaxationNote
	for _, n := range r.s.data.notes {
		if n.AssujettiID != assujettiID || n.FiscalYear != fiscalYear || !n.IsPayable() {
			continue
		}
		if latest == nil || n.CreatedAt.After(latest.CreatedAt) {
			n := n
			latest = &n
		}
	}
	return latest, nil
}

// SetNoteStatus ajusta el estado de una nota (preparación de tests).
func (s *Store) SetNoteStatus(id, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n, ok := s.data.notes[id]; ok {
		n.Status = status
		s.data.notes[id] = n
	}
}

// Onboarding implementa repository.OnboardingRepository.
type Onboarding struct{ s *Store }

func (r Onboarding) GetByUserID(ctx context.Context, userID string) (*entity.OnboardingProgress, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.data.onboarding[userID]
	if !ok {
		return nil, nil
	}
	p = cloneProgress(p)
	return &p, nil
}

func (r Onboarding) Save(ctx context.Context, p *entity.OnboardingProgress) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("onboarding.save"); err != nil {
		return err
	}
	r.s.data.onboarding[p.UserID] = cloneProgress(*p)
	return nil
}

// Controls implementa repository.ControlRepository.
type Controls struct{ s *Store }

func (r Controls) Create(ctx context.Context, c *entity.ControlRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("controls.create"); err != nil {
		return err
	}
	c2 := *c
	c2.Mismatches = append([]string(nil), c.Mismatches...)
	r.s.data.controls[c.ID] = c2
	return nil
}

func (r Controls) CreateRectification(ctx context.Context, rn *entity.RectificationNote) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("controls.create_rectification"); err != nil {
		return err
	}
	for _, other := range r.s.data.rectifications {
		if other.PaymentReference == rn.PaymentReference {
			return domain.ErrDuplicateReference
		}
	}
	if _, ok := r.s.data.rectifications[rn.ControlID]; ok {
		return domain.ErrConflict
	}
	r.s.data.rectifications[rn.ControlID] = *rn
	return nil
}

func (r Controls) GetByID(ctx context.Context, id string) (*entity.ControlRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.data.controls[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r Controls) LockByID(ctx context.Context, id string) (*entity.ControlRecord, error) {
	return r.GetByID(ctx, id)
}

func (r Controls) MarkFinalized(ctx context.Context, id string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("controls.finalize"); err != nil {
		return err
	}
	c, ok := r.s.data.controls[id]
	if !ok || c.Status != entity.ControlStatusDraft {
		return domain.ErrAlreadyCompleted
	}
	c.Status = entity.ControlStatusFinalized
	c.FinalizedAt = &at
	r.s.data.controls[id] = c
	return nil
}

func (r Controls) GetRectificationByControl(ctx context.Context, controlID string) (*entity.RectificationNote, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rn, ok := r.s.data.rectifications[controlID]
	if !ok {
		return nil, nil
	}
	return &rn, nil
}

// Geography implementa repository.GeographyRepository.
type Geography struct{ s *Store }

// Put inserta o reemplaza un nodo.
func (r Geography) Put(n entity.GeographyNode) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.geography[n.ID] = n
}

func (r Geography) GetByID(ctx context.Context, id string) (*entity.GeographyNode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("geography.get"); err != nil {
		return nil, err
	}
	n, ok := r.s.data.geography[id]
	if !ok {
		return nil, nil
	}
	return &n, nil
}

func (r Geography) ListChildren(ctx context.Context, parentID *string) ([]*entity.GeographyNode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.GeographyNode
	for _, n := range r.s.data.geography {
		if !n.IsActive {
			continue
		}
		if (parentID == nil && n.ParentID == nil) || (parentID != nil && n.ParentID != nil && *n.ParentID == *parentID) {
			n := n
			out = append(out, &n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// TaxRules implementa repository.TaxRuleRepository.
type TaxRules struct{ s *Store }

func (r TaxRules) FindActive(ctx context.Context, category, classification string) (*entity.TaxRule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rule, ok := r.s.data.rules[category+"|"+classification]
	if !ok || !rule.IsActive {
		return nil, nil
	}
	return &rule, nil
}

func (r TaxRules) List(ctx context.Context) ([]*entity.TaxRule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entity.TaxRule, 0, len(r.s.data.rules))
	for _, rule := range r.s.data.rules {
		rule := rule
		out = append(out, &rule)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Classification < out[j].Classification
	})
	return out, nil
}

func (r TaxRules) Upsert(ctx context.Context, rule *entity.TaxRule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.rules[rule.Category+"|"+rule.Classification] = *rule
	return nil
}

// Settings implementa repository.SettingsRepository.
type Settings struct{ s *Store }

func (r Settings) Get(ctx context.Context, key string) (string, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.check("settings.get"); err != nil {
		return "", false, err
	}
	v, ok := r.s.data.settings[key]
	return v, ok, nil
}

func (r Settings) Set(ctx context.Context, key, value string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.data.settings[key] = value
	return nil
}
