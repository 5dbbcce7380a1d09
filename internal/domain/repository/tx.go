package repository

import "context"

// TxRepos agrupa los repositorios atados a una misma transacción.
type TxRepos struct {
	Users        UserRepository
	Assujettis   AssujettiRepository
	Declarations DeclarationRepository
	Notes        TaxationNoteRepository
	Onboarding   OnboardingRepository
	Controls     ControlRepository
}

// TxRunner ejecuta fn dentro de una transacción: Commit si fn retorna nil, Rollback en otro caso.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(repos TxRepos) error) error
}
