package auth

// Gate decides whether a caller with the given capabilities may proceed.
type Gate func(Capabilities) bool

// Public admits everyone.
func Public() Gate {
	return func(Capabilities) bool { return true }
}

// RequireStaff admits admin, high command and ownership.
func RequireStaff() Gate {
	return func(c Capabilities) bool { return c.IsStaff }
}

// RequireHighCommandPlus admits high command and anything above it.
func RequireHighCommandPlus() Gate {
	return func(c Capabilities) bool { return c.IsHighCommandPlus }
}

// RequireTicketStaff admits anyone allowed to close tickets they do not own.
func RequireTicketStaff() Gate {
	return func(c Capabilities) bool { return c.CanCloseTickets() }
}

// RequireAny admits callers passing at least one of the gates.
func RequireAny(gates ...Gate) Gate {
	return func(c Capabilities) bool {
		for _, g := range gates {
			if g(c) {
				return true
			}
		}
		return false
	}
}
