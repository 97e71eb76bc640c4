package types

import "time"

type ActionType string

const (
	ActionProposalExecution   ActionType = "proposal_execution"
	ActionTreasuryRebalance   ActionType = "treasury_rebalance"
	ActionTokenTransfer       ActionType = "token_transfer"
	ActionContractInteraction ActionType = "contract_interaction"
)

// Known reports whether t is one of the dispatchable action types.
func (t ActionType) Known() bool {
	switch t {
	case ActionProposalExecution, ActionTreasuryRebalance, ActionTokenTransfer, ActionContractInteraction:
		return true
	default:
		return false
	}
}

// ActionRequest is the caller-supplied description of an on-chain action.
// Parameters are action-type specific and validated before dispatch.
type ActionRequest struct {
	ActionType ActionType     `json:"action_type"`
	DAOAddress string         `json:"dao_address"`
	Parameters map[string]any `json:"parameters"`
}

const (
	ActionStatusExecuted = "executed"
	ActionStatusFailed   = "failed"
)

// ActionResult records one dispatch attempt.
type ActionResult struct {
	ActionID        string     `json:"action_id"`
	ActionType      ActionType `json:"action_type"`
	DAOAddress      string     `json:"dao_address"`
	Status          string     `json:"status"`
	TransactionHash string     `json:"transaction_hash,omitempty"`
	GasUsed         int64      `json:"gas_used,omitempty"`
	ErrorMessage    string     `json:"error_message,omitempty"`
	ExecutedAt      time.Time  `json:"executed_at"`
}

// GasEstimate is the mocked pre-dispatch gas quote for one action type.
type GasEstimate struct {
	ActionType ActionType `json:"action_type"`
	GasUnits   int64      `json:"gas_units"`
}

// ContractStatus mirrors a nano-contract state query.
type ContractStatus struct {
	ContractID    string    `json:"contract_id"`
	State         string    `json:"state"`
	TotalTxs      int       `json:"total_transactions"`
	SuccessRate   float64   `json:"success_rate"`
	GasEfficiency float64   `json:"gas_efficiency"`
	LastActivity  time.Time `json:"last_activity"`
	DeployedAt    time.Time `json:"deployed_at"`
}
