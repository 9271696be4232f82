// Package notify defines the contract for pushing finished import results
// to external consumers. The MQTT implementation lives in infra/notify.
package notify

import "time"

// ImportNotification is the payload published for one finished import.
type ImportNotification struct {
	ID      string    `json:"id"`
	Mode    string    `json:"mode"`
	Success bool      `json:"success"`
	Days    int       `json:"days"`
	Periods int       `json:"periods"`
	Entries int       `json:"entries"`
	Error   string    `json:"error,omitempty"`
	Time    time.Time `json:"time"`
}

// Notifier publishes import notifications.
type Notifier interface {
	NotifyImport(n ImportNotification) error
	Close()
}

// NopNotifier implements Notifier with no-op methods.
type NopNotifier struct{}

func (NopNotifier) NotifyImport(ImportNotification) error { return nil }
func (NopNotifier) Close()                                {}
