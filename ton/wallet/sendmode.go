package wallet

// SendMode is the per-transfer bit-flag byte controlling settlement semantics
type SendMode uint8

const (
	CarryAllRemainingBalance       SendMode = 128
	CarryAllRemainingIncomingValue SendMode = 64
	DestroyAccountIfZero           SendMode = 32
	IgnoreErrors                   SendMode = 2
	PayGasSeparately               SendMode = 1
)

// DefaultSendMode is applied when a transfer does not set a mode explicitly
const DefaultSendMode = IgnoreErrors | PayGasSeparately
