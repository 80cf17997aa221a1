// SPDX-License-Identifier: MPL-2.0

// Package platform holds operating-system names and the file name rules
// that generated artifacts must respect on every platform.
package platform
