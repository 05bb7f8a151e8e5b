package errors

// User-visible failure messages. The HTTP layer returns them verbatim.
const (
	MsgInternal = "Internal server error"

	MsgInvalidBookingRequest   = "Invalid booking request"
	MsgUserNotFound            = "User not found"
	MsgEventNotFound           = "Event not found"
	MsgSalesPeriodClosed       = "Ticket sales period has passed or not yet come"
	MsgInvalidTicketTypes      = "One or more ticket types are invalid"
	MsgNotEnoughTicketsFmt     = "Not enough tickets for type %s"
	MsgOrganizerNotFound       = "Organizer not found"
	MsgBuyerWalletNotFound     = "Wallet user not found"
	MsgOrganizerWalletNotFound = "Wallet organizer not found"
	MsgNotEnoughMoney          = "Not enough money in wallet"

	MsgInvalidTicketID         = "Invalid ticket ID format"
	MsgTicketNotFound          = "Ticket not found"
	MsgTicketAlreadyRefunded   = "Ticket has already been refunded"
	MsgRefundAfterEventStart   = "Cannot refund after event has started"
	MsgRefundRuleNotApplicable = "Refund rule not applicable for this time"
	MsgWalletNotFound          = "Wallet not found"
	MsgOrganizerCannotRefund   = "Organizer wallet balance is insufficient for refund"

	MsgInvalidTicketToken = "Invalid ticket token"
	MsgTicketNotCheckable = "Ticket is not valid for check-in"
	MsgInvalidCredentials = "Invalid credentials"
	MsgUnauthorized       = "Unauthorized"
)
