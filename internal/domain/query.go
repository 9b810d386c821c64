package domain

// HistoryDirection selects which side of a transfer an account is on.
type HistoryDirection string

const (
	DirectionAll      HistoryDirection = "all"
	DirectionSent     HistoryDirection = "sent"
	DirectionReceived HistoryDirection = "received"
)

// Valid reports whether d is a known direction.
func (d HistoryDirection) Valid() bool {
	switch d {
	case DirectionAll, DirectionSent, DirectionReceived:
		return true
	}
	return false
}

// HistoryFilter narrows an account's transaction history.
type HistoryFilter struct {
	Status    TransactionStatus // empty matches all
	Direction HistoryDirection
	Limit     int
	Offset    int
}
