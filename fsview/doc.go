// Package fsview projects directory trees for a document editor and
// relays filesystem change notifications for the folders it shows.
//
// Projecting a folder:
//
//	f, err := fsview.New(fsview.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer f.Close()
//
//	depth := uint(2)
//	root, err := f.Project("/path/to/notes", &depth)
//
// Listing one level, unfiltered:
//
//	entries, err := f.List("/path/to/notes")
//
// Watching for changes:
//
//	events, cancel := f.Events().Subscribe()
//	defer cancel()
//
//	if err := f.WatchStart("/path/to/notes"); err != nil {
//		return err
//	}
//	for msg := range events {
//		fmt.Printf("%s %s\n", msg.Event.Kind, msg.Event.Path)
//	}
//
// Errors match the exported kinds with errors.Is:
//
//	if errors.Is(err, fsview.ErrNotFound) {
//		...
//	}
package fsview
