package payroll

import "testing"

func TestComputeSalesperson(t *testing.T) {
	c := Compute(DefaultPolicy(), Inputs{
		BaseSalary:           480,
		OvertimeHours:        4,
		SalesTotal:           2000,
		HasCommission:        true,
		CommissionPercentage: 3,
		Advances:             50,
	})

	// hourly 2.00, overtime 4 * 2 * 1.5 = 12, commission 60, iess 45.36
	want := Components{
		BaseSalary:      480,
		OvertimePay:     12,
		Commission:      60,
		IESSDeduction:   45.36,
		AdvancePayment:  50,
		TotalIncome:     552,
		TotalDeductions: 95.36,
		NetSalary:       456.64,
	}
	if c != want {
		t.Fatalf("expected %+v, got %+v", want, c)
	}
}

func TestComputeWithoutCommission(t *testing.T) {
	c := Compute(DefaultPolicy(), Inputs{BaseSalary: 1000, SalesTotal: 5000, CommissionPercentage: 10})
	if c.Commission != 0 {
		t.Fatalf("expected no commission, got %v", c.Commission)
	}
	if c.IESSDeduction != 94.5 || c.NetSalary != 905.5 {
		t.Fatalf("unexpected components: %+v", c)
	}
}

func TestComputeRoundsToCents(t *testing.T) {
	c := Compute(DefaultPolicy(), Inputs{BaseSalary: 733.33, OvertimeHours: 1.25})
	// hourly 3.0555..., overtime 1.25 * 3.0555 * 1.5 = 5.7291 -> 5.73
	if c.OvertimePay != 5.73 {
		t.Fatalf("expected 5.73, got %v", c.OvertimePay)
	}
	// 733.33 * 0.0945 = 69.299685 -> 69.30
	if c.IESSDeduction != 69.3 {
		t.Fatalf("expected 69.30, got %v", c.IESSDeduction)
	}
	if c.TotalIncome != 739.06 || c.NetSalary != 669.76 {
		t.Fatalf("unexpected totals: %+v", c)
	}
}

func TestMergeRecomputesFromStoredRow(t *testing.T) {
	stored := Compute(DefaultPolicy(), Inputs{BaseSalary: 480, OvertimeHours: 4})
	bonus := 20.0

	merged := Merge(stored, UpdateInput{Bonuses: &bonus})
	if merged.BaseSalary != 480 || merged.OvertimePay != 12 {
		t.Fatalf("untouched fields changed: %+v", merged)
	}
	if merged.TotalIncome != 512 || merged.NetSalary != 466.64 {
		t.Fatalf("unexpected totals: %+v", merged)
	}
}

func TestSum(t *testing.T) {
	totals := Sum([]Payroll{
		{BaseSalary: 480, NetSalary: 456.64, Commission: 60, TotalDeductions: 95.36},
		{BaseSalary: 1000.1, NetSalary: 905.2, Commission: 0.1, TotalDeductions: 94.9},
	})
	want := Totals{TotalBaseSalary: 1480.1, TotalNetSalary: 1361.84, TotalCommission: 60.1, TotalDeductions: 190.26}
	if totals != want {
		t.Fatalf("expected %+v, got %+v", want, totals)
	}
}
