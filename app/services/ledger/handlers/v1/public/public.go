// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	v1 "github.com/orphinet/ledger/business/web/v1"
	"github.com/orphinet/ledger/foundation/events"
	"github.com/orphinet/ledger/foundation/ledger/database"
	"github.com/orphinet/ledger/foundation/ledger/state"
	"github.com/orphinet/ledger/foundation/nameservice"
	"github.com/orphinet/ledger/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of public ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Register places a new account in the matrix and distributes the package
// payment.
func (h Handlers) Register(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req registerRequest
	if err := web.Decode(r, &req); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	sv := req.Payment.signedVoucher()
	if err := sv.Validate(); err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	sponsorID, err := database.ToAccountID(req.Sponsor)
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	h.Log.Infow("register", "traceid", v.TraceID, "account", sv.Account, "sponsor", sponsorID, "tier", req.Tier, "amount", sv.Amount)
	rcpt, err := h.State.Register(sv.Account, sponsorID, req.Tier, sv.Amount, sv.Ref())
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, toReceipt(h.NS, rcpt), http.StatusOK)
}

// UpgradePackage moves the paying account to a higher package tier.
func (h Handlers) UpgradePackage(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req upgradeRequest
	if err := web.Decode(r, &req); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	sv := req.Payment.signedVoucher()
	if err := sv.Validate(); err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	h.Log.Infow("upgrade", "traceid", v.TraceID, "account", sv.Account, "tier", req.Tier, "amount", sv.Amount)
	rcpt, err := h.State.UpgradePackage(sv.Account, req.Tier, sv.Amount, sv.Ref())
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, toReceipt(h.NS, rcpt), http.StatusOK)
}

// Withdraw converts part of the account's balance into a cash payout and a
// forced reinvestment. The signature proves the account authorized the
// stated amount.
func (h Handlers) Withdraw(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req withdrawRequest
	if err := web.Decode(r, &req); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	sv := payment(req).signedVoucher()
	if err := sv.Validate(); err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	h.Log.Infow("withdraw", "traceid", v.TraceID, "account", sv.Account, "amount", sv.Amount)
	rcpt, err := h.State.Withdraw(sv.Account, sv.Amount)
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, toReceipt(h.NS, rcpt), http.StatusOK)
}

// Reactivate lifts a capped account back to active via one of the three
// strategies.
func (h Handlers) Reactivate(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req reactivateRequest
	if err := web.Decode(r, &req); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	sv := req.Payment.signedVoucher()
	if err := sv.Validate(); err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	h.Log.Infow("reactivate", "traceid", v.TraceID, "account", sv.Account, "strategy", req.Strategy, "amount", sv.Amount)
	rcpt, err := h.State.Reactivate(sv.Account, req.Strategy, sv.Amount, sv.Ref())
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, toReceipt(h.NS, rcpt), http.StatusOK)
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	gen := h.State.RetrieveGenesis()
	return web.Respond(ctx, w, gen, http.StatusOK)
}

// Accounts returns the current state for all accounts or one account.
func (h Handlers) Accounts(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	acct := web.Param(r, "account")

	var accounts map[database.AccountID]database.Account
	switch acct {
	case "":
		accounts = h.State.RetrieveAccounts()

	default:
		accountID, err := database.ToAccountID(acct)
		if err != nil {
			return v1.NewRequestError(err, http.StatusBadRequest)
		}
		account, err := h.State.QueryAccount(accountID)
		if err != nil {
			return v1.NewRequestError(err, http.StatusNotFound)
		}
		accounts = map[database.AccountID]database.Account{accountID: account}
	}

	acts := make([]info, 0, len(accounts))
	for accountID, account := range accounts {
		act := info{
			Account:           accountID,
			Name:              h.NS.Lookup(accountID),
			Sponsor:           account.Sponsor,
			Tier:              account.PackageTier,
			Status:            account.Status,
			TotalInvested:     account.TotalInvested,
			TotalEarnings:     account.TotalEarnings,
			Withdrawable:      account.Withdrawable,
			PaidOut:           account.PaidOut,
			DirectReferrals:   account.DirectReferralCount,
			TeamSize:          account.TeamSize,
			CapRoom:           account.Room(),
			ReactivationCount: account.ReactivationCount,
		}
		acts = append(acts, act)
	}

	return web.Respond(ctx, w, acts, http.StatusOK)
}

// Downline returns the matrix subtree under the specified account in level
// order.
func (h Handlers) Downline(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	accountID, err := database.ToAccountID(web.Param(r, "account"))
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	depth := 0
	if d := r.URL.Query().Get("depth"); d != "" {
		depth, err = strconv.Atoi(d)
		if err != nil {
			return v1.NewRequestError(err, http.StatusBadRequest)
		}
	}

	members, err := h.State.QueryDownline(accountID, depth)
	if err != nil {
		return v1.NewRequestError(err, http.StatusNotFound)
	}

	if len(members) == 0 {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}

	return web.Respond(ctx, w, members, http.StatusOK)
}

// Pools returns the current pool and sink balances.
func (h Handlers) Pools(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	p := h.State.RetrievePools()

	resp := pools{
		Treasury:               p.Treasury,
		Reserve:                p.Reserve,
		Leader:                 p.Leader,
		Help:                   p.Help,
		LastLeaderDistribution: p.LastLeaderDistribution,
		LastHelpDistribution:   p.LastHelpDistribution,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// toReceipt converts a core receipt into its web representation with names
// resolved.
func toReceipt(ns *nameservice.NameService, rcpt database.Receipt) receipt {
	lines := make([]line, len(rcpt.Lines))
	for i, l := range rcpt.Lines {
		lines[i] = line{
			Kind:    l.Kind,
			Account: l.Account,
			Level:   l.Level,
			Amount:  l.Amount,
		}
		if !l.Account.IsZero() {
			lines[i].Name = ns.Lookup(l.Account)
		}
	}

	return receipt{
		ID:      rcpt.ID,
		Seq:     rcpt.Seq,
		Op:      rcpt.Op,
		Account: string(rcpt.Account),
		Time:    rcpt.Time,
		Lines:   lines,
	}
}
