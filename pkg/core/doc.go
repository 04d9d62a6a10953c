// Package core provides a small, stable facade over evgate's internal
// normalization and evaluation packages for external integrations.
//
// Example:
//
//	p, err := core.LoadPolicy(".security/policy.json")
//	if err != nil { /* handle */ }
//	res, err := core.Run(core.Config{Root: ".", Policy: p})
//	if err != nil { /* handle */ }
//	fmt.Println(res.Verdict)
package core
