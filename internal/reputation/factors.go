package reputation

// Step functions mapping raw wallet counters into 0-100.

func scoreWalletAge(days int) int {
	switch {
	case days < 30:
		return 20
	case days < 90:
		return 40
	case days < 365:
		return 60
	case days < 730:
		return 80
	default:
		return 100
	}
}

func scoreTransactionActivity(count int) int {
	switch {
	case count < 10:
		return 20
	case count < 50:
		return 40
	case count < 200:
		return 60
	case count < 500:
		return 80
	default:
		return 100
	}
}

func scoreVolume(volume float64) int {
	switch {
	case volume < 0.1:
		return 20
	case volume < 1:
		return 40
	case volume < 10:
		return 60
	case volume < 50:
		return 80
	default:
		return 100
	}
}

func scoreDiversity(contracts, nfts, defi int) int {
	score := 0
	if contracts > 5 {
		score += 25
	} else {
		score += contracts * 5
	}
	if nfts > 0 {
		score += 25
	}
	if defi > 0 {
		score += 25
	}
	if defi > 3 {
		score += 25
	} else {
		score += defi * 8
	}
	return min(100, score)
}

func scoreBalance(balance float64) int {
	switch {
	case balance < 0.01:
		return 10
	case balance < 0.1:
		return 30
	case balance < 1:
		return 50
	case balance < 10:
		return 70
	case balance < 100:
		return 85
	default:
		return 100
	}
}

// recencyBonus rewards recent activity. lastActive is in days.
func recencyBonus(lastActive int) int {
	switch {
	case lastActive <= 1:
		return 20
	case lastActive <= 7:
		return 15
	case lastActive <= 30:
		return 10
	case lastActive <= 90:
		return 5
	default:
		return 0
	}
}

// Percentile maps a total score onto the fixed percentile ladder.
func Percentile(score int) int {
	switch {
	case score >= 850:
		return 95
	case score >= 800:
		return 90
	case score >= 750:
		return 80
	case score >= 700:
		return 70
	case score >= 650:
		return 60
	case score >= 600:
		return 50
	case score >= 550:
		return 40
	case score >= 500:
		return 30
	case score >= 450:
		return 20
	default:
		return 10
	}
}
