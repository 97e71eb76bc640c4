// Package actions validates and dispatches automated DAO actions to the
// chain client. Validation failures are client errors and never reach the
// network; broadcast failures come back as a failed result, not an error.
package actions

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/RachelGanonNew/AIDA-Project/internal/apperr"
	"github.com/RachelGanonNew/AIDA-Project/internal/logger"
	"github.com/RachelGanonNew/AIDA-Project/internal/pkg/convert"
	"github.com/RachelGanonNew/AIDA-Project/internal/types"
)

const allocationTolerance = 0.01

// Chain is the slice of the chain client the dispatcher needs.
type Chain interface {
	EstimateGas(ctx context.Context, action types.ActionType, params map[string]any) int64
	BroadcastAction(ctx context.Context, req types.ActionRequest) (string, error)
	NanoContract(role string) string
}

// Audit receives every dispatch attempt for the audit trail. Write failures
// are logged and never affect the dispatch outcome.
type Audit interface {
	RecordAction(ctx context.Context, req types.ActionRequest, res types.ActionResult) error
}

type Dispatcher struct {
	chain Chain
	audit Audit
}

func NewDispatcher(chain Chain) *Dispatcher {
	return &Dispatcher{chain: chain}
}

// AttachAudit enables audit-trail recording of dispatched actions.
func (d *Dispatcher) AttachAudit(audit Audit) { d.audit = audit }

// Execute validates req and submits it. The returned error is non-nil only
// for contract violations by the caller; network-side failures are reported
// through the result's status and error message.
func (d *Dispatcher) Execute(ctx context.Context, req types.ActionRequest) (types.ActionResult, error) {
	if err := validate(req); err != nil {
		return types.ActionResult{}, err
	}

	res := types.ActionResult{
		ActionID:   uuid.NewString(),
		ActionType: req.ActionType,
		DAOAddress: req.DAOAddress,
		ExecutedAt: time.Now().UTC(),
	}

	contract, method := executionTarget(d.chain, req)
	hash, err := d.chain.BroadcastAction(ctx, req)
	if err != nil {
		res.Status = types.ActionStatusFailed
		res.ErrorMessage = err.Error()
		logger.Errorf("[Actions] %s failed for %s: %v", req.ActionType, req.DAOAddress, err)
		d.recordAudit(ctx, req, res)
		return res, nil
	}

	res.Status = types.ActionStatusExecuted
	res.TransactionHash = hash
	res.GasUsed = gasForExecution(ctx, d.chain, req)
	logger.Infof("[Actions] executed %s id=%s contract=%s method=%s tx=%s gas=%d",
		req.ActionType, res.ActionID, contract, method, hash, res.GasUsed)
	d.recordAudit(ctx, req, res)
	return res, nil
}

func (d *Dispatcher) recordAudit(ctx context.Context, req types.ActionRequest, res types.ActionResult) {
	if d.audit == nil {
		return
	}
	if err := d.audit.RecordAction(ctx, req, res); err != nil {
		logger.Warnf("[Actions] audit write for %s: %v", res.ActionID, err)
	}
}

// EstimateGas quotes gas for an action without executing it.
func (d *Dispatcher) EstimateGas(ctx context.Context, req types.ActionRequest) (types.GasEstimate, error) {
	if !req.ActionType.Known() {
		return types.GasEstimate{}, apperr.InvalidParams(
			fmt.Sprintf("unsupported action type: %s", req.ActionType), nil)
	}
	return types.GasEstimate{
		ActionType: req.ActionType,
		GasUnits:   d.chain.EstimateGas(ctx, req.ActionType, req.Parameters),
	}, nil
}

func validate(req types.ActionRequest) error {
	if strings.TrimSpace(req.DAOAddress) == "" {
		return apperr.InvalidParams("DAO address is required", nil)
	}
	if !req.ActionType.Known() {
		return apperr.InvalidParams(
			fmt.Sprintf("unsupported action type: %s", req.ActionType), nil)
	}

	switch req.ActionType {
	case types.ActionProposalExecution:
		if paramString(req.Parameters, "proposal_id") == "" {
			return apperr.InvalidParams("proposal ID is required for proposal execution",
				map[string]string{"proposal_id": "missing"})
		}
	case types.ActionTreasuryRebalance:
		return validateAllocation(req.Parameters)
	case types.ActionTokenTransfer:
		if paramString(req.Parameters, "recipient") == "" {
			return apperr.InvalidParams("parameter 'recipient' is required for token transfer",
				map[string]string{"recipient": "missing"})
		}
		if convert.ToFloat64(req.Parameters["amount"]) <= 0 {
			return apperr.InvalidParams("parameter 'amount' must be positive for token transfer",
				map[string]string{"amount": "must be > 0"})
		}
		if paramString(req.Parameters, "token_address") == "" {
			return apperr.InvalidParams("parameter 'token_address' is required for token transfer",
				map[string]string{"token_address": "missing"})
		}
	case types.ActionContractInteraction:
		if paramString(req.Parameters, "contract_address") == "" || paramString(req.Parameters, "method") == "" {
			return apperr.InvalidParams("contract address and method are required",
				map[string]string{"contract_address": "required", "method": "required"})
		}
	}
	return nil
}

func validateAllocation(params map[string]any) error {
	raw, ok := params["target_allocation"]
	if !ok {
		return apperr.InvalidParams("target allocation is required for treasury rebalancing",
			map[string]string{"target_allocation": "missing"})
	}
	alloc, ok := raw.(map[string]any)
	if !ok || len(alloc) == 0 {
		return apperr.InvalidParams("target allocation must be a non-empty symbol->share map",
			map[string]string{"target_allocation": "invalid"})
	}
	var total float64
	for _, share := range alloc {
		total += convert.ToFloat64(share)
	}
	if math.Abs(total-1.0) > allocationTolerance {
		return apperr.InvalidParams("target allocation percentages must sum to 100%",
			map[string]string{"target_allocation": fmt.Sprintf("sums to %.4f", total)})
	}
	return nil
}

// executionTarget names the nano contract and method an action maps to,
// for the execution log.
func executionTarget(chain Chain, req types.ActionRequest) (contract, method string) {
	switch req.ActionType {
	case types.ActionProposalExecution:
		return chain.NanoContract("proposal_executor"), "executeProposal"
	case types.ActionTreasuryRebalance:
		return chain.NanoContract("treasury_manager"), "rebalanceTreasury"
	case types.ActionTokenTransfer:
		return "", "transfer"
	case types.ActionContractInteraction:
		return paramString(req.Parameters, "contract_address"), paramString(req.Parameters, "method")
	default:
		return "", ""
	}
}

// gasForExecution mirrors the network quote, except contract interactions
// where the caller may supply its own estimate.
func gasForExecution(ctx context.Context, chain Chain, req types.ActionRequest) int64 {
	if req.ActionType == types.ActionContractInteraction {
		if v := convert.ToFloat64(req.Parameters["estimated_gas"]); v > 0 {
			return int64(v)
		}
	}
	return chain.EstimateGas(ctx, req.ActionType, req.Parameters)
}

func paramString(params map[string]any, key string) string {
	v, ok := params[key]
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return strings.TrimSpace(s)
}
