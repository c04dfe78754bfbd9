// Command encoder runs the transcode pipeline inside a dispatched job.
//
// It accepts the argument vector built by the dispatcher:
//
//	encoder -i <input URL> -o <destination> [-t offset] [-d length]
//	        [-s WxH] [-b bitrate] [-g]
//
// The destination is either a signed storage URL (artifacts upload as they
// are packaged), a relay URL of the form http://pod/pipe/{handle} (segment
// bytes stream straight back to the waiting request), or a local directory.
package main
