package repl

// helpText mirrors the grouping and command order of
// original_source/help.h, reworded in this repo's own voice rather than
// copied verbatim (spec.md leaves HELP's exact text unspecified beyond
// "static text").
const helpText = `BYE       clear database and exit
HELP      show this help message

LIST KEYS         list all keys in the current state
LIST ENTRIES      list all entries in the current state
LIST SNAPSHOTS    list all snapshot ids, newest first

GET <key>      print an entry's values
DEL <key>      delete an entry from the current state
PURGE <key>    delete an entry from the current state and every snapshot

SET <key> <value...>       replace an entry's values (creating it if new)
PUSH <key> <value...>      insert values at the front
APPEND <key> <value...>    insert values at the back

PICK <key> <index>     print the value at a 1-based index
PLUCK <key> <index>    print and remove the value at a 1-based index
POP <key>              print and remove the front value

DROP <id>        delete a snapshot
ROLLBACK <id>    restore a snapshot and delete every newer snapshot
CHECKOUT <id>    replace the current state with a copy of a snapshot
SNAPSHOT         save the current state as a new snapshot

MIN <key>    print the minimum value
MAX <key>    print the maximum value
SUM <key>    print the sum of values
LEN <key>    print the number of values

REV <key>     reverse an entry's values (simple entries only)
UNIQ <key>    remove adjacent repeated values (simple entries only)
SORT <key>    sort an entry's values ascending (simple entries only)

FORWARD <key>     list the keys <key> can reach
BACKWARD <key>    list the keys that can reach <key>
TYPE <key>        print "simple" or "general"
`
