package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/rogerio-castellano/stock-ledger/internal/alerts"
	"github.com/rogerio-castellano/stock-ledger/internal/auth"
	"github.com/rogerio-castellano/stock-ledger/internal/catalog"
	"github.com/rogerio-castellano/stock-ledger/internal/logger"
	"github.com/rogerio-castellano/stock-ledger/internal/repo"
	"github.com/rogerio-castellano/stock-ledger/internal/report"
)

// Deps are the collaborators the HTTP handlers call into.
type Deps struct {
	Ledger      repo.Ledger
	Reports     *report.Engine
	Catalog     *catalog.Service
	Notifier    alerts.Notifier
	Issuer      *auth.TokenIssuer
	Revocations auth.Revocations
	Log         *logger.Logger
}

type Server struct {
	ledger      repo.Ledger
	reports     *report.Engine
	catalog     *catalog.Service
	notifier    alerts.Notifier
	issuer      *auth.TokenIssuer
	revocations auth.Revocations
	validate    *validator.Validate
	log         *logger.Logger
}

func NewServer(d Deps) *Server {
	log := d.Log
	if log == nil {
		log = logger.Nop()
	}
	return &Server{
		ledger:      d.Ledger,
		reports:     d.Reports,
		catalog:     d.Catalog,
		notifier:    d.Notifier,
		issuer:      d.Issuer,
		revocations: d.Revocations,
		validate:    validator.New(),
		log:         log,
	}
}
