// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

package cmd

import (
	"io"

	"github.com/cvmdata/fdk/archive"
	"github.com/jaffee/commandeer"
	"github.com/spf13/cobra"
)

// UnzipMain is wrapped by NewUnzipCommand and only exported for testing purposes.
var UnzipMain *archive.Main

// NewUnzipCommand returns a new cobra command wrapping UnzipMain.
func NewUnzipCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	UnzipMain = archive.NewMain()
	com := &cobra.Command{
		Use:   "unzip",
		Short: "unzip - expand downloaded archives into a flat directory",
		Long: `Expands every .zip and .zst archive of a directory. Paths inside the
archives are dropped; every file lands directly in the output directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return UnzipMain.Run()
		},
	}
	flags := com.Flags()
	err := commandeer.Flags(flags, UnzipMain)
	if err != nil {
		panic(err)
	}
	return com
}

func init() {
	subcommandFns["unzip"] = NewUnzipCommand
}
