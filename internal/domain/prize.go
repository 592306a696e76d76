package domain

// prizeTable maps a match count to a fixed payout. Seven matches pay the draw jackpot.
var prizeTable = map[int]int64{
	2: 100,
	3: 500,
	4: 2000,
	5: 10000,
	6: 50000,
}

// PrizeFor returns the payout for a ticket with the given number of matches.
func PrizeFor(matches int, jackpot int64) int64 {
	if matches == NumbersPerTicket {
		return jackpot
	}
	return prizeTable[matches]
}

// DrawResult summarises a resolution run.
type DrawResult struct {
	DrawID         string      `json:"draw_id"`
	WinningNumbers Numbers     `json:"winning_numbers"`
	TicketsChecked int         `json:"tickets_checked"`
	Winners        int         `json:"winners"`
	WinnersByMatch map[int]int `json:"winners_by_match"`
	TotalPayout    int64       `json:"total_payout"`
}

func (r *DrawResult) Add(matches int, prize int64) {
	r.TicketsChecked++
	if prize <= 0 {
		return
	}
	if r.WinnersByMatch == nil {
		r.WinnersByMatch = make(map[int]int)
	}
	r.Winners++
	r.WinnersByMatch[matches]++
	r.TotalPayout += prize
}
