package blockchain

import (
	"gonum.org/v1/gonum/stat"
)

type Stats struct {
	Length             int     `json:"length"`
	Transactions       int     `json:"transactions"`
	MeanInterval       float64 `json:"mean_block_interval"`
	StdDevInterval     float64 `json:"stddev_block_interval"`
	MeanTransactions   float64 `json:"mean_transactions_per_block"`
	StdDevTransactions float64 `json:"stddev_transactions_per_block"`
}

// ComputeStats summarizes block spacing and transaction load. The genesis
// block is excluded from the per-block transaction figures.
func ComputeStats(chain Chain) Stats {
	s := Stats{Length: len(chain)}
	if len(chain) < 2 {
		return s
	}

	intervals := make([]float64, 0, len(chain)-1)
	txCounts := make([]float64, 0, len(chain)-1)
	for i := 1; i < len(chain); i++ {
		intervals = append(intervals, chain[i].Timestamp-chain[i-1].Timestamp)
		txCounts = append(txCounts, float64(len(chain[i].Transactions)))
		s.Transactions += len(chain[i].Transactions)
	}

	s.MeanInterval, s.StdDevInterval = meanStdDev(intervals)
	s.MeanTransactions, s.StdDevTransactions = meanStdDev(txCounts)
	return s
}

// meanStdDev is stat.MeanStdDev with the single-sample NaN mapped to zero.
func meanStdDev(x []float64) (float64, float64) {
	if len(x) == 1 {
		return x[0], 0
	}
	return stat.MeanStdDev(x, nil)
}
