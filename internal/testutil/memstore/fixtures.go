package memstore

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/redevance-api/internal/domain/entity"
)

// Identificadores del árbol sembrado por SeedGeography.
const (
	ProvinceID     = "prov-kinshasa"
	CityID         = "ville-kinshasa"
	CommuneID      = "commune-gombe"
	NeighborhoodID = "quartier-golf"
	RuralID        = "territoire-kasangulu"
)

func strPtr(s string) *string { return &s }

// SeedGeography provincia URBAINE con descendientes sin categoría propia, más un territorio RURALE.
func (s *Store) SeedGeography() {
	g := s.Geography()
	g.Put(entity.GeographyNode{ID: ProvinceID, Name: "Kinshasa", Level: entity.LevelProvince, Category: strPtr(entity.CategoryUrbaine), IsActive: true})
	g.Put(entity.GeographyNode{ID: CityID, Name: "Kinshasa", Level: entity.LevelCity, ParentID: strPtr(ProvinceID), IsActive: true})
	g.Put(entity.GeographyNode{ID: CommuneID, Name: "Gombe", Level: entity.LevelCommune, ParentID: strPtr(CityID), IsActive: true})
	g.Put(entity.GeographyNode{ID: NeighborhoodID, Name: "Golf", Level: entity.LevelNeighborhood, ParentID: strPtr(CommuneID), IsActive: true})
	g.Put(entity.GeographyNode{ID: RuralID, Name: "Kasangulu", Level: entity.LevelTerritory, ParentID: strPtr(ProvinceID), Category: strPtr(entity.CategoryRurale), IsActive: true})
}

// SeedRules tarifas USD de la categoría URBAINE (pm 10, pmta 15, ppta 12) y RURALE pm 5.
func (s *Store) SeedRules() {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	put := func(cat, class string, price int64) {
		s.data.rules[cat+"|"+class] = entity.TaxRule{
			ID: cat + "-" + class, Category: cat, Classification: class,
			UnitPrice: decimal.NewFromInt(price), Currency: "USD", IsActive: true,
			CreatedAt: now, UpdatedAt: now,
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	put(entity.CategoryUrbaine, entity.ClassificationPM, 10)
	put(entity.CategoryUrbaine, entity.ClassificationPMTA, 15)
	put(entity.CategoryUrbaine, entity.ClassificationPPTA, 12)
	put(entity.CategoryRurale, entity.ClassificationPM, 5)
}

// SeedPendingAssujetti cuenta recién registrada con su assujetti sin identificar.
func (s *Store) SeedPendingAssujetti(userID, assujettiID, email, phone string) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.users[userID] = entity.User{
		ID: userID, Email: email, Name: "Titulaire " + userID,
		Role: entity.RolePending, Status: entity.UserStatusPending,
		CreatedAt: now, UpdatedAt: now,
	}
	s.data.assujettis[assujettiID] = entity.Assujetti{
		ID: assujettiID, UserID: userID, Name: "Titulaire " + userID,
		PersonType: entity.PersonLegal, Email: email, Phone: phone,
		CreatedAt: now, UpdatedAt: now,
	}
}

// SeedUser inserta una cuenta (agentes y administradores).
func (s *Store) SeedUser(u entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.users[u.ID] = u
}

// SeedNote inserta una nota ya emitida.
func (s *Store) SeedNote(n entity.TaxationNote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.notes[n.ID] = n
}

// SeedDeclaration inserta una declaración con sus líneas.
func (s *Store) SeedDeclaration(d entity.Declaration, lines ...entity.DeclarationLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.declarations[d.ID] = d
	s.data.lines[d.ID] = append(s.data.lines[d.ID], lines...)
}

// SetAssujetti reemplaza un assujetti (preparación de tests).
func (s *Store) SetAssujetti(a entity.Assujetti) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.assujettis[a.ID] = cloneAssujetti(a)
}
