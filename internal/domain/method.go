package domain

// MethodType identifies the settlement rail a payment method moves money on.
type MethodType string

const (
	MethodCrypto MethodType = "crypto"
	MethodBank   MethodType = "bank"
	MethodOther  MethodType = "other"
)

// Valid reports whether t is a known method type.
func (t MethodType) Valid() bool {
	switch t {
	case MethodCrypto, MethodBank, MethodOther:
		return true
	}
	return false
}

// PaymentMethod is an account's registered way of moving money on a rail.
// Method storage and encryption belong to account management; the engine only
// needs the owner, the rail type and the rail account reference.
type PaymentMethod struct {
	ID      string
	OwnerID string
	Type    MethodType
	Details string
	Active  bool
}
