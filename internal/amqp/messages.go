package amqp

import (
	"encoding/json"
	"time"
)

// Alert levels carried by budget alert messages.
const (
	LevelWarning   = "warning"
	LevelOverspent = "overspent"
)

// BudgetAlertMessage notifies downstream consumers (notification bots,
// dashboards) that a budget crossed its warn threshold or was
// overspent. Amounts travel as kopecks so consumers never parse
// decimal strings.
type BudgetAlertMessage struct {
	UserID          int64     `json:"user_id"`
	BudgetID        int64     `json:"budget_id"`
	CategoryID      int64     `json:"category_id"`
	Level           string    `json:"level"`
	AmountKopecks   int64     `json:"amount_kopecks"`
	SpentKopecks    int64     `json:"spent_kopecks"`
	SpentPercentage float64   `json:"spent_percentage"`
	Timestamp       time.Time `json:"timestamp"`
}

func (m *BudgetAlertMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func BudgetAlertMessageFromJSON(data []byte) (*BudgetAlertMessage, error) {
	var msg BudgetAlertMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
