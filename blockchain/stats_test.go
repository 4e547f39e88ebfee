package blockchain

import (
	"math"
	"testing"
)

func TestComputeStats(t *testing.T) {
	tests := []struct {
		name  string
		chain Chain
		want  Stats
	}{
		{
			name:  "genesis only",
			chain: Chain{NewGenesisBlock(0)},
			want:  Stats{Length: 1},
		},
		{
			name: "single mined block",
			chain: Chain{
				NewGenesisBlock(0),
				{Index: 2, Timestamp: 4, Transactions: []Transaction{{}, {}}},
			},
			want: Stats{Length: 2, Transactions: 2, MeanInterval: 4, MeanTransactions: 2},
		},
		{
			name: "several blocks",
			chain: Chain{
				NewGenesisBlock(0),
				{Index: 2, Timestamp: 2, Transactions: []Transaction{{}}},
				{Index: 3, Timestamp: 6, Transactions: []Transaction{{}, {}, {}}},
			},
			want: Stats{
				Length:             3,
				Transactions:       4,
				MeanInterval:       3,
				StdDevInterval:     math.Sqrt(2),
				MeanTransactions:   2,
				StdDevTransactions: math.Sqrt(2),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeStats(tt.chain)
			if got.Length != tt.want.Length || got.Transactions != tt.want.Transactions {
				t.Errorf("ComputeStats() counts = %d/%d, want %d/%d",
					got.Length, got.Transactions, tt.want.Length, tt.want.Transactions)
			}
			checks := []struct {
				field     string
				got, want float64
			}{
				{"MeanInterval", got.MeanInterval, tt.want.MeanInterval},
				{"StdDevInterval", got.StdDevInterval, tt.want.StdDevInterval},
				{"MeanTransactions", got.MeanTransactions, tt.want.MeanTransactions},
				{"StdDevTransactions", got.StdDevTransactions, tt.want.StdDevTransactions},
			}
			for _, c := range checks {
				if math.Abs(c.got-c.want) > 1e-9 {
					t.Errorf("%s = %v, want %v", c.field, c.got, c.want)
				}
			}
		})
	}
}
