// Copyright 2024 Bjørn Erik Pedersen
// SPDX-License-Identifier: MIT

package pngmeta_test

import _ "github.com/bool64/dev" // Include CI/Dev scripts to project.
