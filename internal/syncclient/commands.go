package syncclient

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/pocketbank/internal/domain"
)

// Inbound command actions. The set is closed: a frame with any other
// action is logged and dropped.
const (
	ActionReceiveMessage = "RECEIVE_MESSAGE"
	ActionLoanDecision   = "LOAN_DECISION"
	ActionInvoke         = "INVOKE_FUNCTION"
)

// Command is one inbound frame from the remote peer.
type Command struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

// StateTarget is the slice of the state store the sync channel is
// allowed to touch. Everything a remote peer can reach goes through
// this interface; nothing is dispatched by reflection.
type StateTarget interface {
	UserProfile() domain.UserProfile
	Transactions() []domain.Transaction
	LoanApplications() []domain.LoanApplication
	AddNotification(title, message string, severity domain.Severity) (string, error)
	SetLoanStatus(id string, status domain.LoanStatus) error
	UpdateSettings(patch domain.SettingsPatch) error
	MarkRead(id string) error
	MarkSynced(t time.Time) error
	SetBalance(value decimal.Decimal) error
}

type messagePayload struct {
	Title    string          `json:"title"`
	Message  string          `json:"message"`
	Severity domain.Severity `json:"severity"`
}

type loanDecisionPayload struct {
	LoanID string            `json:"loanId"`
	Status domain.LoanStatus `json:"status"`
}

type invokePayload struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
}

// invokeHandlers is the explicit allow-list for INVOKE_FUNCTION. A
// name absent from this map is rejected, whatever the peer claims.
var invokeHandlers = map[string]func(target StateTarget, args json.RawMessage) error{
	"markNotificationRead": func(target StateTarget, args json.RawMessage) error {
		var p struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(args, &p); err != nil {
			return fmt.Errorf("failed to decode args: %w", err)
		}
		return target.MarkRead(p.ID)
	},
	"updateSettings": func(target StateTarget, args json.RawMessage) error {
		var p domain.SettingsPatch
		if err := json.Unmarshal(args, &p); err != nil {
			return fmt.Errorf("failed to decode args: %w", err)
		}
		return target.UpdateSettings(p)
	},
	"setBalance": func(target StateTarget, args json.RawMessage) error {
		var p struct {
			Balance decimal.Decimal `json:"balance"`
		}
		if err := json.Unmarshal(args, &p); err != nil {
			return fmt.Errorf("failed to decode args: %w", err)
		}
		return target.SetBalance(p.Balance)
	},
}

// dispatch routes one inbound command to its handler. Unknown actions
// and disallowed invoke names return an error for logging; the channel
// keeps reading either way.
func dispatch(target StateTarget, cmd Command) error {
	switch cmd.Action {
	case ActionReceiveMessage:
		var p messagePayload
		if err := json.Unmarshal(cmd.Payload, &p); err != nil {
			return fmt.Errorf("failed to decode message payload: %w", err)
		}
		if p.Title == "" {
			p.Title = "Message"
		}
		if p.Severity == "" {
			p.Severity = domain.SeverityInfo
		}
		_, err := target.AddNotification(p.Title, p.Message, p.Severity)
		return err

	case ActionLoanDecision:
		var p loanDecisionPayload
		if err := json.Unmarshal(cmd.Payload, &p); err != nil {
			return fmt.Errorf("failed to decode loan decision payload: %w", err)
		}
		return target.SetLoanStatus(p.LoanID, p.Status)

	case ActionInvoke:
		var p invokePayload
		if err := json.Unmarshal(cmd.Payload, &p); err != nil {
			return fmt.Errorf("failed to decode invoke payload: %w", err)
		}
		handler, ok := invokeHandlers[p.Name]
		if !ok {
			return fmt.Errorf("invoke target %q is not allowed", p.Name)
		}
		return handler(target, p.Args)

	default:
		return fmt.Errorf("unknown action %q", cmd.Action)
	}
}
