package maintenance

// mergeKey is the composite identity used for schedule dedup. Two derived
// tasks for the same item, category, and due mileage are the same occurrence
// regardless of who produced them.
type mergeKey struct {
	title      string
	category   string
	mileage    int
	hasMileage bool
}

func keyOf(t MaintenanceTask) mergeKey {
	k := mergeKey{title: t.Title, category: t.Category}
	if t.DueMileage != nil {
		k.mileage = *t.DueMileage
		k.hasMileage = true
	}
	return k
}

// Merge extends the existing schedule with only those derived tasks whose
// (title, category, dueMileage) key is not already present. Existing order is
// preserved and new tasks are appended in source order.
//
// Merging the same derived input twice is a no-op the second time: duplicate
// keys are silently dropped, never an error.
func Merge(existing, derived []MaintenanceTask) []MaintenanceTask {
	seen := make(map[mergeKey]struct{}, len(existing)+len(derived))
	for _, t := range existing {
		seen[keyOf(t)] = struct{}{}
	}

	out := make([]MaintenanceTask, len(existing), len(existing)+len(derived))
	copy(out, existing)

	for _, t := range derived {
		k := keyOf(t)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, t)
	}
	return out
}
