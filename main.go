// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/invowk/packmk/cmd/packmk"

func main() {
	cmd.Execute()
}
