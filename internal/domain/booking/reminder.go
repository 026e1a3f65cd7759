package booking

// ReminderSlot names one of the configured reminder offsets.
type ReminderSlot string

const (
	ReminderSlot1 ReminderSlot = "reminderSlot1"
	ReminderSlot2 ReminderSlot = "reminderSlot2"
	ReminderSlot3 ReminderSlot = "reminderSlot3"
)

func ReminderSlots() []ReminderSlot {
	return []ReminderSlot{ReminderSlot1, ReminderSlot2, ReminderSlot3}
}

func (s ReminderSlot) IsValid() bool {
	for _, known := range ReminderSlots() {
		if s == known {
			return true
		}
	}
	return false
}

// ReminderFlags records which reminder slots have been dispatched for the
// current start time. Values are copied on write.
type ReminderFlags map[ReminderSlot]bool

func NewReminderFlags() ReminderFlags {
	flags := make(ReminderFlags, len(ReminderSlots()))
	for _, s := range ReminderSlots() {
		flags[s] = false
	}
	return flags
}

// ReminderFlagsFromMap accepts the persisted representation; unknown keys are dropped.
func ReminderFlagsFromMap(m map[string]bool) ReminderFlags {
	flags := NewReminderFlags()
	for k, v := range m {
		if s := ReminderSlot(k); s.IsValid() {
			flags[s] = v
		}
	}
	return flags
}

func (f ReminderFlags) Sent(slot ReminderSlot) bool {
	return f[slot]
}

func (f ReminderFlags) With(slot ReminderSlot) ReminderFlags {
	out := make(ReminderFlags, len(f)+1)
	for k, v := range f {
		out[k] = v
	}
	out[slot] = true
	return out
}

func (f ReminderFlags) ToMap() map[string]bool {
	out := make(map[string]bool, len(f))
	for k, v := range f {
		out[string(k)] = v
	}
	return out
}
