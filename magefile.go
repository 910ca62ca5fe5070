//go:build mage

package main

import (
	"fmt"
	"os/exec"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default target to run when no target is specified
var Default = Test

// Test runs the full package test suite (equivalent to go test ./...)
func Test() error {
	fmt.Println("🚀 Running gvm test suite")
	fmt.Println("=========================")

	mg.SerialDeps(TestUnit)

	fmt.Println()
	fmt.Println("🎉 All tests completed successfully!")
	return nil
}

// TestUnit runs every package's tests
func TestUnit() error {
	fmt.Println("🧪 Running unit tests...")
	err := sh.RunV("go", "test", "-v", "./...")
	if err != nil {
		fmt.Println()
		fmt.Println("❌ Some tests failed.")
		return err
	}
	fmt.Println()
	fmt.Println("✅ All tests passed!")
	return nil
}

// TestGrammar runs only the grammar package's tests
func TestGrammar() error {
	fmt.Println("🧪 Running grammar package tests...")
	return sh.RunV("go", "test", "-v", "./grammar/...")
}

// TestScanner runs only the scanner package's tests
func TestScanner() error {
	fmt.Println("🧪 Running scanner package tests...")
	return sh.RunV("go", "test", "-v", "./scanner/...")
}

// TestParser runs only the parser package's tests
func TestParser() error {
	fmt.Println("🧪 Running parser package tests...")
	return sh.RunV("go", "test", "-v", "./parser/...")
}

// Bench runs every package's benchmarks
func Bench() error {
	fmt.Println("⚡ Running benchmarks...")
	return sh.RunV("go", "test", "-run=^$", "-bench=.", "-benchmem", "./...")
}

// Build compiles the demo REPL binary
func Build() error {
	fmt.Println("🔨 Building gvmdemo...")
	return sh.RunV("go", "build", "-o", "bin/gvmdemo", "./cmd/gvmdemo")
}

// Clean removes generated files
func Clean() error {
	fmt.Println("🧹 Cleaning generated files...")
	return sh.Rm("bin")
}

// Install downloads module dependencies
func Install() error {
	fmt.Println("📦 Installing dependencies...")
	return sh.RunV("go", "mod", "download")
}

// Tidy cleans and organizes go.mod
func Tidy() error {
	fmt.Println("🔧 Tidying go.mod...")
	return sh.RunV("go", "mod", "tidy")
}

// Lint runs golangci-lint, if installed
func Lint() error {
	fmt.Println("🔍 Running linter...")
	if !commandExists("golangci-lint") {
		fmt.Println("⚠️  golangci-lint not found, skipping...")
		return nil
	}
	return sh.RunV("golangci-lint", "run")
}

// Vet runs go vet across the module
func Vet() error {
	fmt.Println("🔍 Running go vet...")
	return sh.RunV("go", "vet", "./...")
}

// Dev runs tests in watch mode (requires watchexec)
func Dev() error {
	fmt.Println("🚀 Starting development mode...")
	if !commandExists("watchexec") {
		fmt.Println("ℹ️  Install watchexec for auto-testing: brew install watchexec")
		return fmt.Errorf("watchexec not found")
	}
	return sh.RunV("watchexec", "-e", "go", "-i", "bin/", "--", "mage", "test")
}

// Release prepares a full release
func Release() error {
	fmt.Println("🚢 Preparing release...")
	mg.SerialDeps(Clean, Install, Tidy, Lint, TestUnit, Build)
	fmt.Println("🎉 Release ready!")
	return nil
}

// CI runs the continuous-integration pipeline
func CI() error {
	fmt.Println("🔄 Running CI pipeline...")
	mg.SerialDeps(Install, Vet, TestUnit)
	return nil
}

// commandExists reports whether cmd is available on PATH
func commandExists(cmd string) bool {
	_, err := exec.LookPath(cmd)
	return err == nil
}
