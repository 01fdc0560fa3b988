package domain

const (
	// RootName is the name of the synthetic root state of every tree.
	RootName = ""

	// ReloadParam is the synthetic parameter injected on a reload boundary.
	// Its value changes on every transition so the boundary never compares equal.
	ReloadParam = "$$reload"

	// ReloadAll, used as Options.ReloadFrom, reloads every state on the target path.
	ReloadAll = "*"
)
