// Package utils provides small conversion helpers shared across packages,
// such as turning a crop-season label into a production year.
package utils
