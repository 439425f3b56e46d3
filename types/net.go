package types

// LinkState is the retained wireless link status published on net/state.
type LinkState struct {
	Up bool
}
