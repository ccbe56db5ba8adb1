// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/orphinet/ledger/app/services/ledger/handlers/v1/private"
	"github.com/orphinet/ledger/app/services/ledger/handlers/v1/public"
	"github.com/orphinet/ledger/foundation/events"
	"github.com/orphinet/ledger/foundation/ledger/state"
	"github.com/orphinet/ledger/foundation/nameservice"
	"github.com/orphinet/ledger/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodGet, version, "/genesis/list", pbl.Genesis)
	app.Handle(http.MethodGet, version, "/accounts/list", pbl.Accounts)
	app.Handle(http.MethodGet, version, "/accounts/list/:account", pbl.Accounts)
	app.Handle(http.MethodGet, version, "/accounts/downline/:account", pbl.Downline)
	app.Handle(http.MethodGet, version, "/pools/list", pbl.Pools)
	app.Handle(http.MethodPost, version, "/register", pbl.Register)
	app.Handle(http.MethodPost, version, "/upgrade", pbl.UpgradePackage)
	app.Handle(http.MethodPost, version, "/withdraw", pbl.Withdraw)
	app.Handle(http.MethodPost, version, "/reactivate", pbl.Reactivate)
}

// PrivateRoutes binds all the version 1 private routes.
func PrivateRoutes(app *web.App, cfg Config) {
	prv := private.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
	}

	app.Handle(http.MethodGet, version, "/ledger/status", prv.Status)
	app.Handle(http.MethodGet, version, "/ledger/record/:seq", prv.Record)
	app.Handle(http.MethodPost, version, "/pools/distribute/:pool", prv.DistributePool)
	app.Handle(http.MethodGet, version, "/govern/proposals", prv.Proposals)
	app.Handle(http.MethodGet, version, "/govern/emergency/list", prv.EmergencyHistory)
	app.Handle(http.MethodPost, version, "/govern/propose", prv.Propose)
	app.Handle(http.MethodPost, version, "/govern/approve", prv.Approve)
	app.Handle(http.MethodPost, version, "/govern/cancel", prv.Cancel)
	app.Handle(http.MethodPost, version, "/govern/execute", prv.Execute)
	app.Handle(http.MethodPost, version, "/govern/emergency", prv.Emergency)
}
