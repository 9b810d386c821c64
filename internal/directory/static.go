package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Enochthedev/Oink-bot-sub001/internal/domain"
)

// Static is an in-memory payment-method directory. Deployments sit in front
// of the account-management service; the engine only consumes the lookup, so
// the map is fixed at construction.
type Static struct {
	methods map[string]domain.PaymentMethod
}

func NewStatic(methods ...domain.PaymentMethod) *Static {
	byID := make(map[string]domain.PaymentMethod, len(methods))
	for _, m := range methods {
		byID[m.ID] = m
	}
	return &Static{methods: byID}
}

func (d *Static) GetMethod(_ context.Context, methodID string) (domain.PaymentMethod, error) {
	if methodID == "" {
		return domain.PaymentMethod{}, domain.ErrInvalidID
	}
	m, ok := d.methods[methodID]
	if !ok {
		return domain.PaymentMethod{}, domain.ErrMethodNotFound
	}
	return m, nil
}

type methodEntry struct {
	ID      string `json:"id"`
	OwnerID string `json:"owner_id"`
	Type    string `json:"type"`
	Details string `json:"details"`
	Active  bool   `json:"active"`
}

// LoadFile reads a JSON array of payment methods from disk.
func LoadFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read methods file: %w", err)
	}

	var entries []methodEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse methods file: %w", err)
	}

	methods := make([]domain.PaymentMethod, 0, len(entries))
	for i, e := range entries {
		if e.ID == "" || e.OwnerID == "" {
			return nil, fmt.Errorf("methods file entry %d: id and owner_id are required", i)
		}
		t := domain.MethodType(e.Type)
		if !t.Valid() {
			return nil, fmt.Errorf("methods file entry %d: %w: %q", i, domain.ErrUnsupportedMethodType, e.Type)
		}
		methods = append(methods, domain.PaymentMethod{
			ID:      e.ID,
			OwnerID: e.OwnerID,
			Type:    t,
			Details: e.Details,
			Active:  e.Active,
		})
	}
	return NewStatic(methods...), nil
}
