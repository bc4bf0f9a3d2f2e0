// Package batch grades many documents against one checks list.
//
// Each target is either a local HTML file or an http(s) URL. Targets are
// processed concurrently with a bounded errgroup. A failing target never
// stops the others: its error is recorded on its Run and the batch goes on.
package batch
