// Command desktidy sorts the files of a folder into category subfolders and
// sets byte-identical duplicates aside in a Duplicates folder.
//
// Usage:
//
//	desktidy [flags] FOLDER_PATH
//	desktidy watch FOLDER_PATH
//	desktidy config init|validate
//	desktidy categories
package main
