package wallet

import "encoding/json"

// ReviewActionResult describes one transaction the user must review
// before the wallet will release it.
type ReviewActionResult struct {
	TXID            string   `json:"txid"`
	Outcome         string   `json:"outcome"`
	SpendAmount     uint64   `json:"spendAmount,omitempty"`
	CompetingTxs    []string `json:"competingTxs,omitempty"`
	LockedOutpoints []string `json:"lockedOutpoints,omitempty"`
}

// ReviewActionsError is the "requires review" capability failure. The
// host renders it distinctly, so the bridge must preserve the full
// structured payload instead of flattening it to a message string.
type ReviewActionsError struct {
	Message             string
	ReviewActionResults []ReviewActionResult
	TXID                string
	Tx                  []byte
	NoSendChange        []string
}

func (e *ReviewActionsError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "one or more actions require review"
}

// Payload is the wire body the bridge returns alongside status 400.
func (e *ReviewActionsError) Payload() json.RawMessage {
	body := struct {
		Status              string               `json:"status"`
		Code                string               `json:"code"`
		Message             string               `json:"message"`
		ReviewActionResults []ReviewActionResult `json:"reviewActionResults"`
		TXID                string               `json:"txid,omitempty"`
		Tx                  []byte               `json:"tx,omitempty"`
		NoSendChange        []string             `json:"noSendChange,omitempty"`
	}{
		Status:              "error",
		Code:                "ERR_REVIEW_ACTIONS",
		Message:             e.Error(),
		ReviewActionResults: e.ReviewActionResults,
		TXID:                e.TXID,
		Tx:                  e.Tx,
		NoSendChange:        e.NoSendChange,
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return json.RawMessage(`{"status":"error","code":"ERR_REVIEW_ACTIONS"}`)
	}
	return raw
}
