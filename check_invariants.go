//go:build !debug
// +build !debug

package s3fifo

func (c *Cache[K, V]) checkInvariants() {}
