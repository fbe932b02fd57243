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

	"github.com/cvmdata/fdk/index"
	"github.com/jaffee/commandeer"
	"github.com/spf13/cobra"
)

// ShowMain is wrapped by NewShowCommand and only exported for testing
// purposes.
var ShowMain *index.Show

// NewShowCommand returns a new cobra command wrapping ShowMain.
func NewShowCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	ShowMain = index.NewShow()
	ShowMain.Out = stdout
	com := &cobra.Command{
		Use:   "show <cnpj>",
		Short: "show - print the document of one fund from the final index",
		Long: `Looks a fund up in the final index, as the read service does, and prints
its document. The identifier may be given with or without punctuation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ShowMain.ID = args[0]
			return ShowMain.Run()
		},
	}
	flags := com.Flags()
	err := commandeer.Flags(flags, ShowMain)
	if err != nil {
		panic(err)
	}
	return com
}

func init() {
	subcommandFns["show"] = NewShowCommand
}
