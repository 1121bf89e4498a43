package jitelf

import (
	"os"

	"jitelf/pkg/utils"
)

type File struct {
	Name     string
	Contents []byte
}

func MustNewFile(name string) *File {
	contents, err := os.ReadFile(name)
	utils.MustNo(err)
	return &File{
		Name:     name,
		Contents: contents,
	}
}
