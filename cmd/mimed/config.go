package main

import (
	"github.com/chronos-tachyon/xdgmime/lib/mimemagic"
)

const defaultMaxBodyBytes = 1 << 20 // 1 MiB

type Config struct {
	DataDirs        []string            `json:"dataDirs"`
	RecheckInterval string              `json:"recheckInterval"`
	MagicSemantics  mimemagic.Semantics `json:"magicSemantics"`
	Fallback        string              `json:"fallback"`
	Watch           bool                `json:"watch"`
	Xattr           bool                `json:"xattr"`
	MaxBodyBytes    int64               `json:"maxBodyBytes"`
}
