// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/kartikk221/application-compiler/cmd/appc"

func main() {
	cmd.Execute()
}
