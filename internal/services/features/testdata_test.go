package features

import (
	"time"

	"GoldCast/internal/domain/models"
)

var day0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// risingBars builds n bars whose close, high and low rise every day.
func risingBars(n int) []models.Bar {
	bars := make([]models.Bar, n)
	for i := range bars {
		f := float64(i)
		d := day0.AddDate(0, 0, i)
		bars[i] = models.Bar{
			Date:    d,
			RawDate: d.Format("01/02/2006"),
			Open:    100 + f,
			Close:   100.5 + f,
			High:    101 + f,
			Low:     99.5 + f,
			Volume:  1000 + 10*f,
		}
	}
	return bars
}

// wavyBars builds n bars with alternating up and down moves of growing size.
func wavyBars(n int) []models.Bar {
	bars := make([]models.Bar, n)
	price := 1800.0
	for i := range bars {
		f := float64(i)
		move := 3 + float64(i%4)
		if i%3 == 1 {
			move = -move
		}
		open := price
		price += move
		d := day0.AddDate(0, 0, i)
		bars[i] = models.Bar{
			Date:    d,
			RawDate: d.Format("01/02/2006"),
			Open:    open,
			Close:   price,
			High:    max(open, price) + 1.5 + float64(i%2),
			Low:     min(open, price) - 1 - float64(i%3)*0.5,
			Volume:  20000 + 150*f,
		}
	}
	return bars
}
