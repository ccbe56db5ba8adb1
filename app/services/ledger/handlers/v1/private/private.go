// Package private maintains the group of handlers for operator access. These
// routes bind to the private host and sit behind the role table: the acting
// account must hold the matching role or the operation is rejected.
package private

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	v1 "github.com/orphinet/ledger/business/web/v1"
	"github.com/orphinet/ledger/foundation/ledger/database"
	"github.com/orphinet/ledger/foundation/ledger/state"
	"github.com/orphinet/ledger/foundation/nameservice"
	"github.com/orphinet/ledger/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of private ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
}

// Status returns the current ledger status.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	pools := h.State.RetrievePools()

	st := status{
		LatestSeq:      h.State.LatestSeq(),
		Accounts:       len(h.State.AccountIDs()),
		Implementation: h.State.CurrentImplementation(),
		Treasury:       pools.Treasury,
		Reserve:        pools.Reserve,
		LeaderPool:     pools.Leader,
		HelpPool:       pools.Help,
	}

	return web.Respond(ctx, w, st, http.StatusOK)
}

// Record returns the journal record with the specified sequence number.
func (h Handlers) Record(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	seq, err := strconv.ParseUint(web.Param(r, "seq"), 10, 64)
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	record, err := h.State.QueryRecord(seq)
	if err != nil {
		return v1.NewRequestError(err, http.StatusNotFound)
	}

	return web.Respond(ctx, w, record, http.StatusOK)
}

// DistributePool drains the specified pool across its eligible accounts.
func (h Handlers) DistributePool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	pool := web.Param(r, "pool")

	var req distributeRequest
	if err := web.Decode(r, &req); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	caller, err := database.ToAccountID(req.Caller)
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	h.Log.Infow("distribute pool", "traceid", v.TraceID, "pool", pool, "caller", caller)
	rcpt, err := h.State.DistributePool(pool, caller)
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, rcpt, http.StatusOK)
}

// Proposals returns every live upgrade proposal.
func (h Handlers) Proposals(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	props := h.State.RetrieveProposals()

	resp := make([]proposal, len(props))
	for i, p := range props {
		resp[i] = proposal(p)
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// EmergencyHistory returns the append-only emergency upgrade record.
func (h Handlers) EmergencyHistory(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	history := h.State.RetrieveEmergencyHistory()

	resp := make([]emergency, len(history))
	for i, e := range history {
		resp[i] = emergency(e)
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Propose registers a new upgrade proposal.
func (h Handlers) Propose(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return h.govern(ctx, w, r, h.State.ProposeUpgrade)
}

// Approve adds a signer's approval to a pending proposal.
func (h Handlers) Approve(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return h.govern(ctx, w, r, h.State.ApproveUpgrade)
}

// Cancel withdraws a pending proposal.
func (h Handlers) Cancel(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return h.govern(ctx, w, r, h.State.CancelUpgrade)
}

// Execute finalizes a proposal once the timelock has expired.
func (h Handlers) Execute(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return h.govern(ctx, w, r, h.State.ExecuteUpgrade)
}

// Emergency applies an upgrade immediately, bypassing the timelock. The
// request must carry a reason.
func (h Handlers) Emergency(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req governRequest
	if err := web.Decode(r, &req); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	actor, err := database.ToAccountID(req.Actor)
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	h.Log.Infow("emergency upgrade", "traceid", v.TraceID, "implref", req.ImplRef, "actor", actor, "reason", req.Reason)
	rcpt, err := h.State.EmergencyUpgrade(req.ImplRef, req.Reason, actor)
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, rcpt, http.StatusOK)
}

// govern handles the common shape of the proposal lifecycle calls.
func (h Handlers) govern(ctx context.Context, w http.ResponseWriter, r *http.Request, op func(string, database.AccountID) (database.Receipt, error)) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var req governRequest
	if err := web.Decode(r, &req); err != nil {
		return fmt.Errorf("unable to decode payload: %w", err)
	}

	actor, err := database.ToAccountID(req.Actor)
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	h.Log.Infow("governance", "traceid", v.TraceID, "implref", req.ImplRef, "actor", actor)
	rcpt, err := op(req.ImplRef, actor)
	if err != nil {
		return v1.NewRequestError(err, http.StatusBadRequest)
	}

	return web.Respond(ctx, w, rcpt, http.StatusOK)
}
