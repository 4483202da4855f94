package export

import "fmt"

// Mode selects how the destination is updated.
type Mode int

const (
	// ModeReplaceAll empties the destination, creating it if needed, then copies.
	// The destination is owned by the export: every entry in it is removed,
	// subdirectories included, not only earlier artifacts.
	ModeReplaceAll Mode = iota + 1
	// ModeCopyMerge copies next to whatever the destination already holds.
	ModeCopyMerge
	// ModeMoveMerge moves artifacts next to whatever the destination already holds.
	ModeMoveMerge
)

var modeNames = map[Mode]string{
	ModeReplaceAll: "replace-all",
	ModeCopyMerge:  "copy-merge",
	ModeMoveMerge:  "move-merge",
}

// Modes lists every mode in declaration order.
func Modes() []Mode {
	return []Mode{ModeReplaceAll, ModeCopyMerge, ModeMoveMerge}
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses a mode name such as "copy-merge".
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown mode %q (want replace-all, copy-merge or move-merge)", s)
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

// CreatesDestination reports whether a missing destination is created.
func (m Mode) CreatesDestination() bool { return m == ModeReplaceAll }

// ClearsDestination reports whether prior destination contents are deleted.
func (m Mode) ClearsDestination() bool { return m == ModeReplaceAll }

// Moves reports whether artifacts are relocated instead of copied.
func (m Mode) Moves() bool { return m == ModeMoveMerge }

// RequiresDestination reports whether the caller must name the destination.
func (m Mode) RequiresDestination() bool { return m != ModeReplaceAll }

// Strategy selects how destination file names are derived.
type Strategy int

const (
	// StrategyNone keeps the source file name.
	StrategyNone Strategy = iota
	// StrategyRevision inserts the build identifier before the extension.
	StrategyRevision
)

func (s Strategy) String() string {
	switch s {
	case StrategyNone:
		return "none"
	case StrategyRevision:
		return "revision"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy parses "none" or "revision".
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "none":
		return StrategyNone, nil
	case "revision":
		return StrategyRevision, nil
	default:
		return 0, fmt.Errorf("unknown tag strategy %q (want none or revision)", s)
	}
}

// DefaultStrategy is the naming strategy a mode uses when none is configured.
func (m Mode) DefaultStrategy() Strategy {
	if m == ModeReplaceAll {
		return StrategyRevision
	}
	return StrategyNone
}
