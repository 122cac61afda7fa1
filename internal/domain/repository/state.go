package repository

// StateGroup agrupa estados de usuario. Un estado puede pertenecer a varios.
type StateGroup string

const (
	GroupDisabled   StateGroup = "DISABLED"
	GroupLocked     StateGroup = "LOCKED"
	GroupUnlocked   StateGroup = "UNLOCKED"
	GroupVerified   StateGroup = "VERIFIED"
	GroupUnverified StateGroup = "UNVERIFIED"
)

// UserState es el estado crudo de un usuario en el store.
type UserState string

const (
	StateUnlockedVerified   UserState = "UNLOCKED__VERIFIED"
	StateUnlockedUnverified UserState = "UNLOCKED__UNVERIFIED"
	StateLockedVerified     UserState = "LOCKED__VERIFIED"
	StateLockedUnverified   UserState = "LOCKED__UNVERIFIED"
	StateDisabledLocked     UserState = "DISABLED__LOCKED"
	StateDisabledUnlocked   UserState = "DISABLED__UNLOCKED"
	StatePendingSignup      UserState = "PENDING__SIGNUP"
)

var stateGroups = map[UserState][]StateGroup{
	StateUnlockedVerified:   {GroupUnlocked, GroupVerified},
	StateUnlockedUnverified: {GroupUnlocked, GroupUnverified},
	StateLockedVerified:     {GroupLocked, GroupVerified},
	StateLockedUnverified:   {GroupLocked, GroupUnverified},
	StateDisabledLocked:     {GroupDisabled, GroupLocked},
	StateDisabledUnlocked:   {GroupDisabled, GroupUnlocked},
	StatePendingSignup:      {GroupUnverified},
}

// Groups devuelve los grupos a los que pertenece el estado.
// Un estado desconocido no pertenece a ninguno.
func (s UserState) Groups() []StateGroup {
	return stateGroups[s]
}

// IsInGroup indica si el estado pertenece al grupo g.
func (s UserState) IsInGroup(g StateGroup) bool {
	for _, sg := range stateGroups[s] {
		if sg == g {
			return true
		}
	}
	return false
}

// Valid indica si el estado es conocido.
func (s UserState) Valid() bool {
	_, ok := stateGroups[s]
	return ok
}
