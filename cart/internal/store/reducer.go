package store

// Reduce applies one action to the state and returns the next state. It is
// pure: the input state is never mutated, and the cached aggregates are
// recomputed from the resulting lines before returning.
func Reduce(state CartState, action Action) CartState {
	next := state.clone()

	switch act := action.(type) {
	case AddLine:
		if i := findLine(next.Lines, act.Candidate.Key()); i >= 0 {
			// Silent no-op past the stock ceiling.
			if next.Lines[i].Quantity < next.Lines[i].MaxStock {
				next.Lines[i].Quantity++
			}
		} else {
			next.Lines = append(next.Lines, CartLine{
				ProductID: act.Candidate.ProductID,
				Name:      act.Candidate.Name,
				UnitPrice: act.Candidate.UnitPrice,
				Image:     act.Candidate.Image,
				Size:      act.Candidate.Size,
				Color:     act.Candidate.Color,
				Quantity:  1,
				MaxStock:  act.Candidate.MaxStock,
			})
		}
		next.IsOpen = true
	case RemoveLine:
		if i := findLine(next.Lines, act.Key); i >= 0 {
			next.Lines = append(next.Lines[:i], next.Lines[i+1:]...)
		}
	case SetQuantity:
		if i := findLine(next.Lines, act.Key); i >= 0 {
			quantity := act.Quantity
			if quantity > next.Lines[i].MaxStock {
				quantity = next.Lines[i].MaxStock
			}
			if quantity <= 0 {
				next.Lines = append(next.Lines[:i], next.Lines[i+1:]...)
			} else {
				next.Lines[i].Quantity = quantity
			}
		}
	case Clear:
		next.Lines = nil
	case Open:
		next.IsOpen = true
	case Close:
		next.IsOpen = false
	case Toggle:
		next.IsOpen = !next.IsOpen
	}

	next.Total, next.LineCount = derive(next.Lines)
	return next
}
