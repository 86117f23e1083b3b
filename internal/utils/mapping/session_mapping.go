package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/finanalysis/internal/core/domain"
	"github.com/SscSPs/finanalysis/internal/models"
)

// ToModelSession converts a domain Session to its table row, encoding the ledger and the
// interaction state as JSON.
func ToModelSession(d domain.Session) (models.Session, error) {
	m := models.Session{
		SessionID:   d.SessionID,
		OwnerID:     d.OwnerID,
		SourceName:  d.SourceName,
		Fingerprint: d.Fingerprint,
		State:       string(d.State),
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
	if d.FailureReason != "" {
		reason := d.FailureReason
		m.FailureReason = &reason
	}
	if d.Ledger != nil {
		ledger, err := json.Marshal(d.Ledger)
		if err != nil {
			return models.Session{}, fmt.Errorf("failed to encode ledger of session %s: %w", d.SessionID, err)
		}
		m.Ledger = ledger
	}
	interaction, err := json.Marshal(d.Interaction)
	if err != nil {
		return models.Session{}, fmt.Errorf("failed to encode interaction state of session %s: %w", d.SessionID, err)
	}
	m.Interaction = interaction
	return m, nil
}

// ToDomainSession converts a table row back to a domain Session.
func ToDomainSession(m models.Session) (domain.Session, error) {
	d := domain.Session{
		SessionID:   m.SessionID,
		OwnerID:     m.OwnerID,
		SourceName:  m.SourceName,
		Fingerprint: m.Fingerprint,
		State:       domain.UploadState(m.State),
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
	if m.FailureReason != nil {
		d.FailureReason = *m.FailureReason
	}
	if len(m.Ledger) > 0 {
		var ledger domain.Ledger
		if err := json.Unmarshal(m.Ledger, &ledger); err != nil {
			return domain.Session{}, fmt.Errorf("failed to decode ledger of session %s: %w", m.SessionID, err)
		}
		d.Ledger = &ledger
	}
	if err := json.Unmarshal(m.Interaction, &d.Interaction); err != nil {
		return domain.Session{}, fmt.Errorf("failed to decode interaction state of session %s: %w", m.SessionID, err)
	}
	if d.Interaction.Overrides == nil {
		d.Interaction.Overrides = map[string]domain.Bucket{}
	}
	if d.Interaction.SortOrder == nil {
		d.Interaction.SortOrder = map[domain.Bucket][]string{}
	}
	return d, nil
}
