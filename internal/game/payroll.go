package game

// Payroll is the salary cost accrued over dayProgress days. Salaries are monthly.
func Payroll(employees []Employee, dayProgress float64, cfg Config) float64 {
	var monthly float64
	for _, e := range employees {
		monthly += e.Salary
	}
	return monthly / float64(cfg.daysPerMonth()) * dayProgress
}
