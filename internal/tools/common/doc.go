// Package common provides helpers shared by the MCP tool packages:
// argument accessors and the instrumented handler wrapper.
package common
