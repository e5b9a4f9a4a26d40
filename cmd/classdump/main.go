// Copyright 2024 Binframe. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/binframe/jclass"
	"github.com/spf13/cobra"
)

var (
	wantConstants bool
	wantFields    bool
	wantMethods   bool
	wantCode      bool
	wantAnomalies bool
	wantAll       bool
)

func prettyPrint(buf []byte) string {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, buf, "", "\t"); err != nil {
		return string(buf)
	}
	return pretty.String()
}

func isDirectory(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

func dumpClass(filename string) {
	cf, err := jclass.New(filename, jclass.DefaultOptions())
	if err != nil {
		log.Printf("error opening %s: %v", filename, err)
		return
	}
	defer cf.Close()

	if err := cf.Parse(); err != nil {
		log.Printf("error parsing %s: %v", filename, err)
		return
	}

	thisClass, err := cf.ThisClassName()
	if err != nil {
		thisClass = fmt.Sprintf("#%d", cf.ThisClassIndex)
	}
	fmt.Printf("%s (major %d, %s)\n", thisClass, cf.MajorVersion, jclass.JavaVersionName(cf.MajorVersion))

	if wantConstants || wantAll {
		b, _ := json.Marshal(cf.ConstantPool)
		fmt.Println(prettyPrint(b))
	}
	if wantFields || wantAll {
		b, _ := json.Marshal(cf.Fields)
		fmt.Println(prettyPrint(b))
	}
	if wantMethods || wantAll {
		b, _ := json.Marshal(cf.Methods)
		fmt.Println(prettyPrint(b))
	}
	if wantCode || wantAll {
		for _, m := range cf.Methods {
			code, ok := m.Code()
			if !ok {
				continue
			}
			fmt.Printf("%s%s:\n%s\n", m.Name, m.Descriptor, code.Disassemble(cf.ConstantPool))
		}
	}
	if wantAnomalies || wantAll {
		for _, a := range cf.Anomalies {
			fmt.Println("anomaly:", a)
		}
	}
}

func dump(cmd *cobra.Command, args []string) {
	filePath := args[0]
	if !isDirectory(filePath) {
		dumpClass(filePath)
		return
	}

	var files []string
	filepath.Walk(filePath, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() && filepath.Ext(path) == ".class" {
			files = append(files, path)
		}
		return nil
	})
	for _, f := range files {
		dumpClass(f)
	}
}

func main() {
	var rootCmd = &cobra.Command{
		Use:   "classdump",
		Short: "A JVM .class file decoder",
		Long:  "classdump decodes the constant pool, fields, methods, and bytecode of a .class file",
	}

	var dumpCmd = &cobra.Command{
		Use:   "dump",
		Short: "Dumps a class file or a directory of class files",
		Args:  cobra.MinimumNArgs(1),
		Run:   dump,
	}

	dumpCmd.Flags().BoolVar(&wantConstants, "constants", false, "dump the constant pool")
	dumpCmd.Flags().BoolVar(&wantFields, "fields", false, "dump fields")
	dumpCmd.Flags().BoolVar(&wantMethods, "methods", false, "dump methods")
	dumpCmd.Flags().BoolVar(&wantCode, "code", false, "disassemble method bodies")
	dumpCmd.Flags().BoolVar(&wantAnomalies, "anomalies", false, "list decode-time anomalies")
	dumpCmd.Flags().BoolVar(&wantAll, "all", false, "dump everything")

	rootCmd.AddCommand(dumpCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
