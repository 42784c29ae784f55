// Package services implements the driving ports. The preview service wires
// the locator, the active storage strategy, the sanitiser, the render
// cache, and the artifact store into the edit-synthesis pipeline.
package services
