package memory

import "github.com/SaiNageswarS/heywrite/gateway"

// Window returns the tail of msgs that starts at the maxUserTurns-th user
// turn from the end, so each kept question travels with its reply. With
// maxUserTurns <= 0, or fewer user turns than that, all of msgs is kept.
// The result is a fresh slice, never nil.
func Window(msgs []gateway.Message, maxUserTurns int) []gateway.Message {
	start := 0
	if maxUserTurns > 0 {
		usersSeen := 0
		for i := len(msgs) - 1; i >= 0; i-- {
			if msgs[i].Role == gateway.RoleUser {
				usersSeen++
				if usersSeen == maxUserTurns {
					start = i
					break
				}
			}
		}
	}

	out := make([]gateway.Message, len(msgs)-start)
	copy(out, msgs[start:])
	return out
}
